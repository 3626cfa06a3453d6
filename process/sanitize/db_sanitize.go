// Package sanitize truncates application tables, typically before re-running
// seeds on a development database.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"pfa/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultTables lists the app tables in dependency-safe order.
const DefaultTables = "receipt_scans,refresh_tokens,transactions,categories,users"

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Options controls a sanitize run.
type Options struct {
	Tables string
	DryRun bool
	Yes    bool
	Reseed bool
}

// ParseTables splits a comma separated list and drops invalid identifiers.
func ParseTables(list string) (valid, rejected []string) {
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			rejected = append(rejected, p)
			continue
		}
		valid = append(valid, p)
	}
	return valid, rejected
}

// TruncateStatement builds the TRUNCATE for already validated table names.
func TruncateStatement(tables []string) string {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
}

// Run truncates the requested tables that exist. Nothing is changed unless
// DryRun is off and Yes is set.
func Run(gdb *gorm.DB, o Options, out io.Writer, log zerolog.Logger) error {
	wanted, rejected := ParseTables(o.Tables)
	for _, r := range rejected {
		log.Warn().Str("table", r).Msg("skipping invalid table name")
	}

	var existing []string
	for _, t := range wanted {
		var cnt int64
		if err := gdb.Raw("SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			return fmt.Errorf("query pg_tables for %s: %w", t, err)
		}
		if cnt > 0 {
			existing = append(existing, t)
		} else {
			log.Info().Str("table", t).Msg("table not found, skipping")
		}
	}
	if len(existing) == 0 {
		fmt.Fprintln(out, "no requested tables present in the database; nothing to do")
		return nil
	}

	fmt.Fprintln(out, "Tables considered for truncation:")
	for _, t := range existing {
		fmt.Fprintf(out, " - %s\n", t)
	}
	if o.DryRun {
		fmt.Fprintln(out, "dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return nil
	}
	if !o.Yes {
		fmt.Fprintln(out, "Destructive operation. Pass --yes to confirm execution. Aborting.")
		return nil
	}

	stmt := TruncateStatement(existing)
	log.Info().Str("stmt", stmt).Msg("executing")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	log.Info().Msg("truncate completed")

	if o.Reseed {
		n, err := models.SeedGlobalCategories(gdb)
		if err != nil {
			return fmt.Errorf("reseed categories: %w", err)
		}
		log.Info().Int("count", n).Msg("reseeded global categories")
	}
	return nil
}
