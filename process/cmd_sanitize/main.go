package main

import (
	"flag"
	"fmt"
	"os"

	"pfa/pkg/config"
	"pfa/pkg/logger"
	"pfa/process/sanitize"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	var o sanitize.Options
	flag.BoolVar(&o.DryRun, "dry-run", true, "Don't perform destructive actions; show what would be done")
	flag.BoolVar(&o.Yes, "yes", false, "Confirm destructive action (required to actually truncate)")
	flag.BoolVar(&o.Reseed, "reseed", false, "After truncation, reseed the global categories")
	flag.StringVar(&o.Tables, "tables", sanitize.DefaultTables, "Comma-separated list of tables to truncate")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.DBDSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN must be set to run db_sanitize")
		os.Exit(2)
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := sanitize.Run(gdb, o, os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("sanitize failed")
	}
}
