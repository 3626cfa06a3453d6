package receipt

import (
	"reflect"
	"testing"
)

func TestSplitBlocks(t *testing.T) {
	got := SplitBlocks("<s_nm>A</s_nm><sep/>  <sep/>\n<s_nm>B</s_nm><sep/>", "<sep/>")
	want := []string{"<s_nm>A</s_nm>", "<s_nm>B</s_nm>"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSplitBlocksNoSeparator(t *testing.T) {
	got := SplitBlocks("  <s_nm>Tea</s_nm>  ", "<sep/>")
	if len(got) != 1 || got[0] != "<s_nm>Tea</s_nm>" {
		t.Fatalf("expected single trimmed block, got %q", got)
	}
	if got := SplitBlocks(" \n\t ", "<sep/>"); len(got) != 0 {
		t.Fatalf("expected no blocks for blank input, got %q", got)
	}
}

func TestExtractTag(t *testing.T) {
	if got := ExtractTag("nm", "<nm>Coffee</nm><sep/>"); !reflect.DeepEqual(got, []string{"Coffee"}) {
		t.Fatalf("got %q", got)
	}
	block := "<s_nm>Milk</s_nm><s_price>1.00</s_price><s_nm>Bread\nLoaf</s_nm>"
	got := ExtractTag("s_nm", block)
	if !reflect.DeepEqual(got, []string{"Milk", "Bread\nLoaf"}) {
		t.Fatalf("got %q", got)
	}
	if got := ExtractTag("s_unitprice", block); len(got) != 0 {
		t.Fatalf("expected no unit prices, got %q", got)
	}
}

func TestStripTags(t *testing.T) {
	if got := StripTags("Juice <s_cnt>2</s_cnt>  x"); got != "Juice 2 x" {
		t.Fatalf("got %q", got)
	}
}
