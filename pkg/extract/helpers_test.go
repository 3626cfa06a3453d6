package extract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
)

const cordMarkup = `<s_menu><s_nm>Coffee</s_nm><s_price>50.00</s_price><sep/>` +
	`<s_nm>Club Sandwich</s_nm><s_price>120,50</s_price><sep/>` +
	`<s_nm>TOTAL</s_nm><s_price>170.50</s_price><sep/>` +
	`<s_nm>15.03.2024 12:30</s_nm></s_menu>`

type fakeModel struct {
	out   string
	err   error
	calls int32
	size  image.Rectangle
}

func (f *fakeModel) Infer(ctx context.Context, img image.Image) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if img != nil {
		f.size = img.Bounds()
	}
	return f.out, f.err
}

type fakeRaster struct {
	pages []image.Image
	err   error
	calls int
}

func (f *fakeRaster) Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error) {
	f.calls++
	return f.pages, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{200, 200, 200, 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}
