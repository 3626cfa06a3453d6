package receipt

import "testing"

func TestIsMetadata(t *testing.T) {
	meta := []string{"TOTAL", "Sub Total", "VAT 25%", "CASH", "Visa ****1234", "Terminal ID 0042",
		"Thank you!", "GRAND TOTAL", "Å BETALE", "MVA", "Bankkort", "Kvittering"}
	for _, s := range meta {
		if !IsMetadata(s) {
			t.Fatalf("expected %q to be metadata", s)
		}
	}
	items := []string{"Coffee", "Club Sandwich", "Brunost", "Milk 1L", "Grande Latte"}
	for _, s := range items {
		if IsMetadata(s) {
			t.Fatalf("expected %q to be an item", s)
		}
	}
}

func TestClassifierCustomLocale(t *testing.T) {
	c := NewClassifier(map[string][]string{"de": {"Summe", "MwSt"}})
	if !c.IsMetadata("SUMME EUR") || !c.IsMetadata("mwst 19%") {
		t.Fatalf("custom keywords not applied")
	}
	if c.IsMetadata("TOTAL") {
		t.Fatalf("custom classifier should not include default keywords")
	}
}
