// receipt_dump prints the extraction result for one receipt file as JSON.
//
// With -raw the file is treated as model markup and only parsed, which is
// handy for checking parser changes against saved model output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"pfa/pkg/config"
	"pfa/pkg/extract"
	"pfa/pkg/logger"
	"pfa/pkg/ocr"
)

func main() {
	file := flag.String("file", "", "receipt image or PDF")
	raw := flag.String("raw", "", "file with raw model markup to parse")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	model := ocr.Shared(func() (ocr.Model, error) {
		return ocr.NewModel(ocr.Options{
			Engine:   cfg.ReceiptEngine,
			URL:      cfg.DonutURL,
			ModelID:  cfg.DonutModelID,
			Token:    cfg.DonutToken,
			Timeout:  cfg.DonutTimeout,
			Language: cfg.TesseractLang,
		}, log)
	})
	raster := &ocr.Pdftoppm{Bin: cfg.PdftoppmBin, DPI: cfg.PDFRasterDPI, MaxPages: cfg.OCRMaxPages, Runner: ocr.ExecRunner{Log: log}}
	svc := extract.New(model, raster, log, extract.WithEngine(cfg.ReceiptEngine))

	var resp *extract.Response
	switch {
	case *raw != "":
		b, err := os.ReadFile(*raw)
		if err != nil {
			log.Fatal().Err(err).Msg("read markup")
		}
		resp = svc.ParseMarkup(string(b), "markup")
	case *file != "":
		b, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("read file")
		}
		up := extract.Upload{Filename: filepath.Base(*file), ContentType: mime.TypeByExtension(filepath.Ext(*file)), Data: b}
		resp, err = svc.Extract(context.Background(), up)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("extract failed")
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: receipt_dump -file <image|pdf> | -raw <markup.txt>")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatal().Err(err).Msg("encode")
	}
}
