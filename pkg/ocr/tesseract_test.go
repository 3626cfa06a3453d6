package ocr

import "testing"

func TestLinesToMarkup(t *testing.T) {
	text := "SUPER MART\n\nCoffee   50.00\n2 x Tea 12,50\nTOTAL 62.50 NOK\nDate 15.03.2024\n<odd>"
	got := LinesToMarkup(text)
	want := "<s_nm>SUPER MART</s_nm><sep/>" +
		"<s_nm>Coffee</s_nm><s_price>50.00</s_price><sep/>" +
		"<s_nm>2 x Tea</s_nm><s_price>12,50</s_price><sep/>" +
		"<s_nm>TOTAL</s_nm><s_price>62.50</s_price><sep/>" +
		"<s_nm>Date 15.03.2024</s_nm><sep/>" +
		"<s_nm>(odd)</s_nm><sep/>"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
	if LinesToMarkup(" \n\t\n") != "" {
		t.Fatalf("blank text should render nothing")
	}
}
