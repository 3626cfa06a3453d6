package extract

import (
	"path/filepath"
	"strings"
)

// Kinds of upload.
const (
	KindPDF   = "pdf"
	KindImage = "image"
)

// Upload is one file handed to the pipeline.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Kind reports "pdf" when the content type or the file name says so,
// otherwise "image".
func (u Upload) Kind() string {
	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "application/pdf" || strings.EqualFold(filepath.Ext(u.Filename), ".pdf") {
		return KindPDF
	}
	return KindImage
}
