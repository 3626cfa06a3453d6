package main

import "testing"

func TestCategoryChart(t *testing.T) {
	h := categoryChart([]categorySum{{"Food", 123450}, {"Uncategorized", 550}})
	labels := h["labels"].([]string)
	values := h["values"].([]float64)
	if len(labels) != 2 || labels[1] != "Uncategorized" || values[0] != 1234.5 || h["total"].(float64) != 1240 {
		t.Fatalf("unexpected chart %+v", h)
	}
	empty := categoryChart(nil)
	if len(empty["labels"].([]string)) != 0 || empty["total"].(float64) != 0 {
		t.Fatalf("unexpected empty chart %+v", empty)
	}
}

func TestMonthValues(t *testing.T) {
	v := monthValues([]monthSum{{1, 10000}, {12, 25050}, {13, 1}})
	if len(v) != 12 || v[0] != 100 || v[11] != 250.5 || v[5] != 0 {
		t.Fatalf("unexpected values %v", v)
	}
}
