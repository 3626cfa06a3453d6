package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MaxSide bounds the longest edge of a page handed to an engine.
const MaxSide = 2560

// DecodeImage decodes an uploaded image (honouring EXIF orientation),
// flattens it onto white so it is opaque RGB and downscales it to maxSide.
func DecodeImage(data []byte, maxSide int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return normalizePage(img, maxSide), nil
}

// FitPage flattens a rendered page onto white and bounds it to maxSide.
func FitPage(img image.Image, maxSide int) image.Image {
	return normalizePage(img, maxSide)
}

func normalizePage(img image.Image, maxSide int) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.NRGBA{255, 255, 255, 255})
	out := imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		out = imaging.Fit(out, maxSide, maxSide, imaging.Lanczos)
	}
	return out
}

// prepareForOCR applies the grayscale/contrast/upscale/threshold chain that
// gives Tesseract clean glyphs on thermal receipts.
func prepareForOCR(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}
	return binarize(gray, 210)
}

// binarize performs a global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
