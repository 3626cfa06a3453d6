// cmd_debug_preproc writes the page exactly as the receipt engine receives it.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pfa/pkg/config"
	"pfa/pkg/logger"
	"pfa/pkg/ocr"

	"github.com/disintegration/imaging"
)

func main() {
	in := flag.String("in", "", "receipt image or PDF")
	out := flag.String("out", "preproc.png", "output PNG")
	maxSide := flag.Int("max-side", ocr.MaxSide, "longest page edge")
	flag.Parse()
	if *in == "" {
		log.Fatal("-in is required")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	var page image.Image
	if strings.EqualFold(filepath.Ext(*in), ".pdf") {
		cfg := config.Load()
		raster := &ocr.Pdftoppm{
			Bin:      cfg.PdftoppmBin,
			DPI:      cfg.PDFRasterDPI,
			MaxPages: 1,
			Runner:   ocr.ExecRunner{Log: logger.New(cfg.LogLevel, cfg.LogFormat)},
		}
		pages, err := raster.Rasterize(context.Background(), data)
		if err != nil {
			log.Fatalf("rasterize: %v", err)
		}
		page = ocr.FitPage(pages[0], *maxSide)
	} else {
		page, err = ocr.DecodeImage(data, *maxSide)
		if err != nil {
			log.Fatalf("decode: %v", err)
		}
	}
	if err := imaging.Save(page, *out); err != nil {
		log.Fatalf("save: %v", err)
	}
	b := page.Bounds()
	fmt.Printf("wrote %s (%dx%d)\n", *out, b.Dx(), b.Dy())
}
