package config

import (
	"testing"
	"time"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c := FromEnv(lookup(nil))
	if c.Addr != ":8000" || !c.DBAutoMigrate || c.ReceiptEngine != "donut" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.PDFRasterDPI != 300 || c.OCRMaxPages != 3 || c.AccessTTL != 24*time.Hour {
		t.Fatalf("unexpected numeric defaults %+v", c)
	}
	if !c.UsingDevSecret() {
		t.Fatalf("expected dev secret fallback")
	}
	if len(c.CORSOrigins) != 2 {
		t.Fatalf("unexpected cors origins %v", c.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	c := FromEnv(lookup(map[string]string{
		"DB_AUTO_MIGRATE":       "no",
		"RECEIPT_ENGINE":        "Tesseract",
		"PDF_RASTER_DPI":        "150",
		"OCR_MAX_PAGES":         "-4",
		"JWT_SECRET":            "s3cret",
		"CORS_ORIGINS":          " https://a.example , ,https://b.example",
		"DONUT_TIMEOUT_SECONDS": "30",
	}))
	if c.DBAutoMigrate {
		t.Fatalf("DB_AUTO_MIGRATE=no should disable migrations")
	}
	if c.ReceiptEngine != "tesseract" || c.PDFRasterDPI != 150 || c.OCRMaxPages != 3 {
		t.Fatalf("unexpected overrides %+v", c)
	}
	if c.UsingDevSecret() || c.DonutTimeout != 30*time.Second {
		t.Fatalf("unexpected secret/timeout %+v", c)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", c.CORSOrigins)
	}
}
