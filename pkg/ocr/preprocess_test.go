package ocr

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImageFlattensAndDownscales(t *testing.T) {
	src := imaging.New(400, 200, color.NRGBA{0, 0, 0, 0})
	img, err := DecodeImage(encodePNG(t, src), 100)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50 got %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, a := img.At(10, 10).RGBA()
	if a != 0xffff || r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatalf("transparent pixels should become opaque white, got %v %v %v %v", r, g, b, a)
	}
}

func TestDecodeImageKeepsSmallPages(t *testing.T) {
	src := imaging.New(30, 20, color.NRGBA{10, 20, 30, 255})
	img, err := DecodeImage(encodePNG(t, src), MaxSide)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Fatalf("small page must not be resized, got %v", b)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage([]byte("%PDF-1.4 not an image"), MaxSide); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBinarize(t *testing.T) {
	src := imaging.New(2, 1, color.NRGBA{250, 250, 250, 255})
	src.Set(0, 0, color.NRGBA{40, 40, 40, 255})
	out := binarize(src, 210)
	if out.NRGBAAt(0, 0).R != 0 || out.NRGBAAt(1, 0).R != 255 {
		t.Fatalf("unexpected threshold output %v %v", out.NRGBAAt(0, 0), out.NRGBAAt(1, 0))
	}
}
