package inbox

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
)

func writeNoisePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := imaging.New(w, h, color.Black)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save: %v", err)
	}
}
