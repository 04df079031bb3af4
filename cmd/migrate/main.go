// Command migrate manages the news table schema.
//
// Usage:
//
//	migrate [-path dir] [-timeout d] up
//	migrate [-path dir] [-timeout d] down
//	migrate [-path dir] [-timeout d] steps N
//	migrate [-path dir] [-timeout d] version
//	migrate [-path dir] [-timeout d] force V
//
// Without -path (or NEWSADMIN_DATABASE_MIGRATION_PATH) the migrations
// compiled into the binary are used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"

	"github.com/helixir/news-admin-service/internal/config"
	"github.com/helixir/news-admin-service/internal/database"
	"github.com/helixir/news-admin-service/internal/observability"
	"github.com/helixir/news-admin-service/migrations"
)

var errUsage = errors.New("usage: migrate [-path dir] [-timeout d] up|down|steps N|version|force V")

// command is one parsed invocation.
type command struct {
	action  string
	arg     int
	path    string
	timeout time.Duration
}

func main() {
	cmd, err := parseCommand(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cmd.run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", cmd.action, err)
		os.Exit(1)
	}
}

func parseCommand(args []string, output io.Writer) (command, error) {
	var cmd command
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cmd.path, "path", "", "read migrations from this directory instead of the embedded set")
	fs.DurationVar(&cmd.timeout, "timeout", 30*time.Second, "time allowed for connecting to the database")
	if err := fs.Parse(args); err != nil {
		return command{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return command{}, errUsage
	}
	cmd.action, rest = rest[0], rest[1:]

	switch cmd.action {
	case "up", "down", "version":
		if len(rest) != 0 {
			return command{}, errUsage
		}
	case "steps", "force":
		if len(rest) != 1 {
			return command{}, errUsage
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return command{}, fmt.Errorf("%s: %q is not an integer", cmd.action, rest[0])
		}
		switch {
		case cmd.action == "steps" && n == 0:
			return command{}, errors.New("steps: N must not be zero")
		case cmd.action == "force" && n < 0:
			return command{}, errors.New("force: V must not be negative")
		}
		cmd.arg = n
	default:
		return command{}, fmt.Errorf("unknown action %q\n%w", cmd.action, errUsage)
	}
	return cmd, nil
}

func (c command) run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.path == "" {
		c.path = cfg.Database.MigrationPath
	}

	logger := observability.WithComponent(observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	}), "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrator, err := database.OpenMigrator(db, c.path, migrations.FS, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close migrator")
		}
	}()

	if err := c.apply(migrator, logger); err != nil {
		return err
	}

	v, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info().Msg("no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	logger.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
	return nil
}

func (c command) apply(m *database.Migrator, logger zerolog.Logger) error {
	switch c.action {
	case "up":
		return m.Up()
	case "down":
		logger.Warn().Msg("rolling back every migration")
		return m.Down()
	case "steps":
		return m.Steps(c.arg)
	case "force":
		logger.Warn().Int("version", c.arg).Msg("forcing schema version without running migrations")
		return m.Force(c.arg)
	}
	return nil
}
