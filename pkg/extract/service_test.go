package extract

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"pfa/pkg/ocr"
)

func TestExtractEmptyUploadSkipsModel(t *testing.T) {
	m := &fakeModel{out: cordMarkup}
	svc := New(m, &fakeRaster{}, zerolog.Nop())
	_, err := svc.Extract(context.Background(), Upload{Filename: "r.jpg"})
	var in *InputError
	if !errors.As(err, &in) || !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("expected empty upload input error, got %v", err)
	}
	if in.Message() != "Empty upload" {
		t.Fatalf("unexpected message %q", in.Message())
	}
	if m.calls != 0 {
		t.Fatalf("model must not be invoked, got %d calls", m.calls)
	}
}

func TestExtractImage(t *testing.T) {
	m := &fakeModel{out: cordMarkup}
	svc := New(m, nil, zerolog.Nop())
	resp, err := svc.Extract(context.Background(), Upload{Filename: "r.png", ContentType: "image/png", Data: pngBytes(t, 40, 60)})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("expected a single model call, got %d", m.calls)
	}
	d := resp.Diagnostics
	if d.Source != "donut-image" || !d.DateDetected || d.Items != 2 || d.Total == nil || d.Total.String() != "170.50" {
		t.Fatalf("unexpected diagnostics %+v", d)
	}
	if len(resp.Transactions) != 2 || resp.Transactions[1].Description != "Club Sandwich" {
		t.Fatalf("unexpected transactions %+v", resp.Transactions)
	}
	if *resp.Transactions[0].Date != "2024-03-15" {
		t.Fatalf("unexpected date %v", *resp.Transactions[0].Date)
	}
	if resp.RawJSON != cordMarkup {
		t.Fatalf("raw markup should pass through unchanged")
	}

	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"amount":120.50`, `"total":170.50`, `"source":"donut-image"`, `"date":"2024-03-15"`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("response %s missing %s", b, want)
		}
	}
	if strings.Contains(string(b), "Engine") {
		t.Fatalf("engine must not be serialised: %s", b)
	}
}

func TestExtractDownscalesLargeImages(t *testing.T) {
	m := &fakeModel{out: cordMarkup}
	svc := New(m, nil, zerolog.Nop(), WithMaxSide(50))
	if _, err := svc.Extract(context.Background(), Upload{Filename: "big.png", Data: pngBytes(t, 200, 100)}); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if m.size.Dx() != 50 || m.size.Dy() != 25 {
		t.Fatalf("expected 50x25 page, got %v", m.size)
	}
}

func TestExtractPDFUsesFirstPage(t *testing.T) {
	m := &fakeModel{out: cordMarkup}
	r := &fakeRaster{pages: []image.Image{imaging.New(30, 40, image.White), imaging.New(50, 50, image.White)}}
	svc := New(m, r, zerolog.Nop())
	resp, err := svc.Extract(context.Background(), Upload{Filename: "Receipt.PDF", ContentType: "application/octet-stream", Data: []byte("%PDF-1.4")})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if r.calls != 1 || m.size.Dx() != 30 || m.size.Dy() != 40 {
		t.Fatalf("expected first page 30x40, got %v (raster calls %d)", m.size, r.calls)
	}
	if resp.Diagnostics.Source != "donut-pdf" {
		t.Fatalf("unexpected source %q", resp.Diagnostics.Source)
	}
}

func TestExtractPDFRasterFailures(t *testing.T) {
	cases := map[string]*fakeRaster{
		"error":    {err: errors.New("exit status 1")},
		"no pages": {err: ocr.ErrNoPages},
		"empty":    {},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			m := &fakeModel{out: cordMarkup}
			svc := New(m, r, zerolog.Nop())
			_, err := svc.Extract(context.Background(), Upload{Filename: "a.pdf", Data: []byte("junk")})
			var in *InputError
			if !errors.As(err, &in) || !errors.Is(err, ErrRasterize) {
				t.Fatalf("expected rasterize input error, got %v", err)
			}
			if in.Message() != "Could not rasterize PDF" {
				t.Fatalf("unexpected message %q", in.Message())
			}
			if m.calls != 0 {
				t.Fatalf("model must not run after raster failure")
			}
		})
	}
}

func TestExtractUndecodableImage(t *testing.T) {
	m := &fakeModel{out: cordMarkup}
	svc := New(m, nil, zerolog.Nop())
	_, err := svc.Extract(context.Background(), Upload{Filename: "x.jpg", Data: []byte("not an image")})
	if !errors.Is(err, ErrUnsupportedImage) || m.calls != 0 {
		t.Fatalf("expected unsupported image error without model call, got %v", err)
	}
}

func TestExtractTooLarge(t *testing.T) {
	m := &fakeModel{out: cordMarkup}
	svc := New(m, nil, zerolog.Nop(), WithMaxBytes(4))
	if _, err := svc.Extract(context.Background(), Upload{Filename: "x.png", Data: []byte("12345")}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestExtractModelFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	m := &fakeModel{err: boom}
	svc := New(m, nil, zerolog.Nop())
	_, err := svc.Extract(context.Background(), Upload{Filename: "x.png", Data: pngBytes(t, 10, 10)})
	var ext *ExternalFailure
	if !errors.As(err, &ext) || !errors.Is(err, boom) {
		t.Fatalf("expected external failure wrapping the cause, got %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("model failures must not be retried, got %d calls", m.calls)
	}
}

func TestExtractBlankModelOutputIsEmptyResult(t *testing.T) {
	for _, out := range []string{"", "  \n"} {
		m := &fakeModel{out: out}
		svc := New(m, nil, zerolog.Nop())
		resp, err := svc.Extract(context.Background(), Upload{Filename: "blank.png", Data: pngBytes(t, 10, 10)})
		if err != nil {
			t.Fatalf("blank output %q: unexpected error %v", out, err)
		}
		if resp.Diagnostics.Items != 0 || resp.Diagnostics.DateDetected || resp.Diagnostics.Total != nil {
			t.Fatalf("unexpected diagnostics %+v", resp.Diagnostics)
		}
		b, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		for _, want := range []string{`"transactions":[]`, `"total":null`, `"date_detected":false`, `"items":0`} {
			if !strings.Contains(string(b), want) {
				t.Fatalf("response %s missing %s", b, want)
			}
		}
	}
}

func TestExtractKeepsRawOutputUnmodified(t *testing.T) {
	out := `<s_nm>Tea {hot}</s_nm><s_price>3.00</s_price><sep/>{"note": "x"}<sep/><s_nm>02.10.23</s_nm>`
	m := &fakeModel{out: out}
	svc := New(m, nil, zerolog.Nop())
	resp, err := svc.Extract(context.Background(), Upload{Filename: "x.png", Data: pngBytes(t, 10, 10)})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if resp.RawJSON != out {
		t.Fatalf("raw_json must be the model output, got %q", resp.RawJSON)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Description != "Tea {hot}" {
		t.Fatalf("text around braces must still be parsed: %+v", resp.Transactions)
	}
	if !resp.Diagnostics.DateDetected {
		t.Fatalf("date after the braces should be detected")
	}
}

func TestParseMarkup(t *testing.T) {
	svc := New(nil, nil, zerolog.Nop(), WithEngine("tesseract"))
	resp := svc.ParseMarkup(cordMarkup, "donut-image")
	if resp.Diagnostics.Items != 2 || resp.Diagnostics.Engine != "tesseract" {
		t.Fatalf("unexpected diagnostics %+v", resp.Diagnostics)
	}
}

func TestUploadKind(t *testing.T) {
	cases := []struct {
		up   Upload
		want string
	}{
		{Upload{ContentType: "application/pdf"}, KindPDF},
		{Upload{ContentType: "Application/PDF; charset=binary"}, KindPDF},
		{Upload{Filename: "scan.Pdf"}, KindPDF},
		{Upload{Filename: "scan.jpg", ContentType: "image/jpeg"}, KindImage},
		{Upload{}, KindImage},
	}
	for _, c := range cases {
		if got := c.up.Kind(); got != c.want {
			t.Fatalf("Kind(%+v) = %s, want %s", c.up, got, c.want)
		}
	}
}
