package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pfa/models"
	"pfa/pkg/config"
	"pfa/pkg/extract"
	"pfa/pkg/logger"
	"pfa/pkg/money"
	"pfa/pkg/ocr"
	"pfa/process/inbox"
)

func main() {
	dir := flag.String("dir", "inbox", "directory to scan for receipt images and PDFs")
	email := flag.String("email", "", "owner of the scanned receipts (required unless -dry-run)")
	dryRun := flag.Bool("dry-run", false, "print drafts as JSON; no DB interaction")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	commit := flag.Bool("commit", false, "also create expense transactions from the drafts")
	category := flag.String("category", "Other", "category name for committed transactions")
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

	w := &inbox.Watcher{Dir: *dir, Workers: *workers, Extractor: svc, Log: log}
	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		w.Handle = func(ctx context.Context, r inbox.Result) error {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Upload.Filename, r.Err)
				return nil
			}
			return enc.Encode(map[string]any{"file": r.Upload.Filename, "result": r.Response})
		}
	} else {
		if *email == "" {
			fmt.Fprintln(os.Stderr, "-email is required unless -dry-run")
			os.Exit(2)
		}
		db := mustInitDBFromEnv(cfg.DBDSN)
		var user models.User
		if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
			log.Fatal().Err(err).Str("email", *email).Msg("user not found")
		}
		var catID *uint
		if *commit {
			catID = resolveCategory(db, user.ID, *category, log)
		}
		w.Move = true
		w.Handle = func(ctx context.Context, r inbox.Result) error {
			rec := extract.ScanRecord(user.ID, r.Upload, r.Path, r.Response, r.Err)
			if err := db.Create(&rec).Error; err != nil {
				return fmt.Errorf("record scan: %w", err)
			}
			if !*commit || r.Err != nil {
				return nil
			}
			return commitDrafts(db, user.ID, catID, r.Response)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	start := time.Now()
	var err error
	if *watch {
		err = w.Run(ctx)
	} else {
		err = w.Scan(ctx)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("inbox failed")
	}
	log.Info().Dur("duration", time.Since(start)).Msg("inbox done")
}

func mustInitDBFromEnv(dsn string) *gorm.DB {
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN must be set in environment to run this tool")
		os.Exit(2)
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	return gdb
}

func resolveCategory(db *gorm.DB, userID uint, name string, log zerolog.Logger) *uint {
	var c models.Category
	err := db.Where("(user_id = ? OR user_id IS NULL) AND name = ?", userID, name).
		Order("user_id IS NULL, id").First(&c).Error
	if err != nil {
		log.Fatal().Err(err).Str("category", name).Msg("category not found")
	}
	return &c.ID
}

// commitDrafts inserts the drafts of one receipt as expense transactions.
func commitDrafts(db *gorm.DB, userID uint, catID *uint, resp *extract.Response) error {
	if resp == nil || len(resp.Transactions) == 0 {
		return nil
	}
	txns := make([]models.Transaction, 0, len(resp.Transactions))
	for _, d := range resp.Transactions {
		date := time.Now().UTC().Truncate(24 * time.Hour)
		if d.Date != nil {
			if t, err := time.Parse(time.DateOnly, *d.Date); err == nil {
				date = t
			}
		}
		minor, err := money.FromDecimal(d.Amount)
		if err != nil || minor <= 0 {
			continue
		}
		desc := d.Description
		txns = append(txns, models.Transaction{
			UserID:      userID,
			Type:        models.TxnExpense,
			Date:        date,
			CategoryID:  catID,
			Description: &desc,
			AmountMinor: minor,
		})
	}
	if len(txns) == 0 {
		return nil
	}
	return db.Create(&txns).Error
}
