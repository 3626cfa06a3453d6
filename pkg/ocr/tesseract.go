package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

// TesseractModel is an offline engine: it OCRs the page with Tesseract and
// renders every text line as a CORD-style block so the receipt parser can
// consume it like Donut output.
type TesseractModel struct {
	Language string
	log      zerolog.Logger
}

// NewTesseractModel returns an engine using the given tesseract language.
func NewTesseractModel(lang string, log zerolog.Logger) *TesseractModel {
	if lang == "" {
		lang = "eng"
	}
	return &TesseractModel{Language: lang, log: log}
}

// Infer runs one OCR pass over a preprocessed copy of img.
func (t *TesseractModel) Infer(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepareForOCR(img), imaging.PNG); err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Language); err != nil {
		return "", fmt.Errorf("tesseract language: %w", err)
	}
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("tesseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	t.log.Debug().Str("snippet", snippet(normalizeLine(text), 180)).Msg("tesseract text")
	return LinesToMarkup(text), nil
}

// trailingAmountRE captures an amount at the end of a receipt line.
var trailingAmountRE = regexp.MustCompile(`^(.*?)\s+([0-9][0-9., ]*[.,][0-9]{2}|[0-9]+)\s*[A-Za-z]{0,3}$`)

// LinesToMarkup renders plain OCR text as CORD-style markup: one block per
// non-empty line, the trailing amount becoming the price.
func LinesToMarkup(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = normalizeLine(line)
		if line == "" {
			continue
		}
		line = escapeMarkup(line)
		if m := trailingAmountRE.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			fmt.Fprintf(&b, "<s_nm>%s</s_nm><s_price>%s</s_price><sep/>", strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
			continue
		}
		fmt.Fprintf(&b, "<s_nm>%s</s_nm><sep/>", line)
	}
	return b.String()
}

func escapeMarkup(s string) string {
	return strings.NewReplacer("<", "(", ">", ")").Replace(s)
}
