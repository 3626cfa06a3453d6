package receipt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToDraftsConfidence(t *testing.T) {
	items := []Item{{Name: "Coffee", Price: decimal.RequireFromString("50")}}
	noDate := ToDrafts(Result{Items: items})
	if len(noDate) != 1 || noDate[0].Confidence.Date != 0.0 || noDate[0].Date != nil {
		t.Fatalf("unexpected draft without date %+v", noDate)
	}
	d := "2024-03-15"
	withDate := ToDrafts(Result{Items: items, Date: &d})
	if withDate[0].Confidence.Date != 0.7 || *withDate[0].Date != d {
		t.Fatalf("unexpected draft with date %+v", withDate[0])
	}
	if withDate[0].Type != "expense" || withDate[0].Confidence.Amount != 0.9 || withDate[0].Confidence.Description != 0.8 {
		t.Fatalf("unexpected fixed fields %+v", withDate[0])
	}
}

func TestToDraftsRoundsAndMarshals(t *testing.T) {
	drafts := ToDrafts(Result{Items: []Item{{Name: "Tea", Price: decimal.RequireFromString("12.5")}}})
	b, err := json.Marshal(drafts[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"amount":12.50`) || !strings.Contains(s, `"date":null`) || !strings.Contains(s, `"type":"expense"`) {
		t.Fatalf("unexpected json %s", s)
	}
}

func TestToDraftsEmpty(t *testing.T) {
	if got := ToDrafts(Result{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
