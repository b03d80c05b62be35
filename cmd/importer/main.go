// Package main implements the content-bank importer CLI. It loads authored
// assessment items from an Excel workbook into the database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/pulseprep/pulseprep-api/internal/config"
	"github.com/pulseprep/pulseprep-api/internal/importer"
	"github.com/pulseprep/pulseprep-api/internal/platform/logger"
	"github.com/pulseprep/pulseprep-api/internal/platform/postgres"
)

func main() {
	file := flag.String("file", "", "path to the .xlsx content bank (required)")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func run(file string) error {
	if file == "" {
		return fmt.Errorf("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	appLogger := logger.Setup(cfg.Server.LogLevel)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	imp, err := importer.New(appLogger, postgres.NewContentStore(db, appLogger))
	if err != nil {
		return err
	}

	report, err := imp.Run(ctx, file)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d, skipped %d duplicates, %d bad rows\n",
		report.Imported, report.Skipped, report.Failed)
	return nil
}
