package ocr

import "errors"

// ErrNoPages is returned when a PDF rasterizes to zero pages.
var ErrNoPages = errors.New("pdf produced no pages")
