// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate [up|down|version|force N]
package main

import (
	"errors"
	"flag"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/backend-material/internal/config"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/obs"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	logger := obs.NewLogger("console", "info").With().Str("component", "migrate").Logger()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init migrator")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Error().Err(err).Msg("close migrator")
		}
	}()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}
	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-*steps)
	case "force":
		v, convErr := strconv.Atoi(flag.Arg(1))
		if convErr != nil {
			logger.Fatal().Err(convErr).Msg("force needs a version number")
		}
		err = m.Force(v)
	case "version":
	default:
		logger.Fatal().Str("command", cmd).Msg("unknown command")
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Fatal().Err(err).Msg("read version")
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Str("command", cmd).Msg("migrations done")
}
