package main

import (
	"errors"
	"fmt"
	"os"

	"pfa/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func initDB(migrate bool) error {
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN")
	}
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if migrate {
		autoMigrate()
	}
	if err := seedCategories(); err != nil {
		appLog.Warn().Err(err).Msg("seeding categories failed")
	}
	ensureUploadBase()
	return nil
}

// autoMigrate migrates models individually so a failure on one doesn't block others.
func autoMigrate() {
	for _, m := range []struct {
		table string
		model any
	}{
		{"users", &models.User{}},
		{"categories", &models.Category{}},
		{"transactions", &models.Transaction{}},
		{"refresh_tokens", &models.RefreshToken{}},
		{"receipt_scans", &models.ReceiptScan{}},
	} {
		if err := db.AutoMigrate(m.model); err != nil {
			appLog.Warn().Err(err).Str("table", m.table).Msg("migration warning")
		}
	}
}

// seedCategories inserts the missing global defaults.
func seedCategories() error {
	n, err := models.SeedGlobalCategories(db)
	if err != nil {
		return err
	}
	if n > 0 {
		appLog.Info().Int("count", n).Msg("seeded global categories")
	}
	return nil
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	if err := os.MkdirAll(cfg.UploadBase, 0o755); err != nil {
		appLog.Warn().Err(err).Str("dir", cfg.UploadBase).Msg("failed to create upload base dir")
	}
}
