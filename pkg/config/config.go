// Package config reads service settings from the environment, optionally
// seeded from a local .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server and the tools read.
type Config struct {
	Env           string
	Addr          string
	DBDSN         string
	DBAutoMigrate bool

	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	CORSOrigins []string

	UploadBase  string
	MaxUploadMB int
	LogLevel    string
	LogFormat   string

	ReceiptEngine string
	DonutURL      string
	DonutModelID  string
	DonutToken    string
	DonutTimeout  time.Duration
	TesseractLang string
	PDFRasterDPI  int
	OCRMaxPages   int
	PdftoppmBin   string
}

const devJWTSecret = "dev-insecure-secret-change"

// Load reads .env (unless APP_ENV=production) without overriding variables
// already set, then the environment.
func Load() Config {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(get func(string) string) Config {
	str := func(k, def string) string {
		if v := strings.TrimSpace(get(k)); v != "" {
			return v
		}
		return def
	}
	num := func(k string, def int) int {
		if n, err := strconv.Atoi(strings.TrimSpace(get(k))); err == nil && n > 0 {
			return n
		}
		return def
	}
	return Config{
		Env:           str("APP_ENV", "development"),
		Addr:          str("ADDR", ":8000"),
		DBDSN:         str("DB_DSN", ""),
		DBAutoMigrate: boolish(get("DB_AUTO_MIGRATE"), true),

		JWTSecret:   str("JWT_SECRET", devJWTSecret),
		AccessTTL:   time.Duration(num("ACCESS_TOKEN_EXPIRE_MINUTES", 24*60)) * time.Minute,
		RefreshTTL:  30 * 24 * time.Hour,
		CORSOrigins: splitList(str("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		UploadBase:  str("UPLOAD_BASE", "uploads"),
		MaxUploadMB: num("MAX_UPLOAD_MB", 10),
		LogLevel:    str("LOG_LEVEL", "info"),
		LogFormat:   str("LOG_FORMAT", "console"),

		ReceiptEngine: strings.ToLower(str("RECEIPT_ENGINE", "donut")),
		DonutURL:      str("DONUT_URL", "http://127.0.0.1:8500/infer"),
		DonutModelID:  str("DONUT_MODEL_ID", "naver-clova-ix/donut-base-finetuned-cord-v2"),
		DonutToken:    str("DONUT_TOKEN", ""),
		DonutTimeout:  time.Duration(num("DONUT_TIMEOUT_SECONDS", 120)) * time.Second,
		TesseractLang: str("TESSERACT_LANG", "eng"),
		PDFRasterDPI:  num("PDF_RASTER_DPI", 300),
		OCRMaxPages:   num("OCR_MAX_PAGES", 3),
		PdftoppmBin:   str("PDFTOPPM_BIN", "pdftoppm"),
	}
}

// UsingDevSecret reports whether JWT_SECRET fell back to the development value.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func boolish(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
