package ocr

import "strings"

// snippet returns a shortened version of s for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// normalizeLine collapses tabs and repeated spaces inside one OCR line.
func normalizeLine(t string) string {
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}
