// Command importer loads a JSON catalog file into Postgres.
//
//	importer -file catalog.json [-dry-run]
package main

import (
	"flag"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-material/internal/obs"
)

func main() {
	path := flag.String("file", "catalog.json", "catalog JSON file")
	dryRun := flag.Bool("dry-run", false, "validate and roll back")
	flag.Parse()

	logger := obs.NewLogger("console", "info").With().Str("component", "importer").Logger()
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file, using environment")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	fh, err := os.Open(*path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open catalog file")
	}
	file, err := decodeCatalog(fh)
	_ = fh.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid catalog file")
	}

	conn, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer conn.Close()

	tx, err := conn.Beginx()
	if err != nil {
		logger.Fatal().Err(err).Msg("begin transaction")
	}
	sum, err := importCatalog(tx, file)
	if err != nil {
		_ = tx.Rollback()
		logger.Fatal().Err(err).Msg("import failed, nothing written")
	}
	if *dryRun {
		_ = tx.Rollback()
		logger.Info().Msg("dry run, rolled back")
	} else if err := tx.Commit(); err != nil {
		logger.Fatal().Err(err).Msg("commit import")
	}

	logger.Info().
		Int("units", sum.Units).
		Int("categories", sum.Categories).
		Int("sub_categories", sum.SubCategories).
		Int("brands", sum.Brands).
		Int("products", sum.Products).
		Msg("import complete")
}
