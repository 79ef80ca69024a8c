package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"evalvault/internal/codec"
	"evalvault/internal/config"
	"evalvault/internal/inspect"
	"evalvault/internal/loader"
	"evalvault/internal/repository"
	"evalvault/internal/repository/sqlite"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "explicit config file path")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	initConfig := flag.Bool("init", false, "write a default config file and exit")
	reset := flag.Bool("reset", false, "drop and recreate all tables")
	seed := flag.Bool("seed", false, "create the default admin user if missing")
	loadPath := flag.String("load", "", "apply a YAML seed file")
	exportFormat := flag.String("export", "", "write a snapshot to stdout: json or yaml")
	restorePath := flag.String("restore", "", "restore a snapshot file into the store")
	inspectDB := flag.Bool("inspect", false, "print database summary and entity listings")
	table := flag.String("table", "", "print the structure of one table and exit")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *initConfig {
		path := *configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("write default config")
		}
		logger.Info().Str("path", path).Msg("config written")
		return
	}

	cfg, loadedFrom, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if loadedFrom != "" {
		logger.Debug().Str("path", loadedFrom).Msg("config loaded")
	}

	// Flags override config
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatal().Err(err).Str("level", cfg.Log.Level).Msg("parse log level")
	}
	logger = logger.Level(level)

	store, err := sqlite.Open(cfg.Database.Path, sqlite.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
	}
	defer store.Close()

	ctx := context.Background()

	if *reset {
		if err := store.Reset(ctx); err != nil {
			logger.Fatal().Err(err).Msg("reset database")
		}
		logger.Info().Msg("database reset")
	}

	if *seed {
		if err := seedAdmin(ctx, sqlite.NewUsers(store), logger); err != nil {
			logger.Fatal().Err(err).Msg("seed admin user")
		}
	}

	if *loadPath != "" {
		seedFile, err := loader.LoadFile(*loadPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *loadPath).Msg("load seed file")
		}
		result, err := loader.Apply(ctx, seedFile,
			sqlite.NewUsers(store), sqlite.NewQueries(store), sqlite.NewEvaluations(store))
		if err != nil {
			logger.Fatal().Err(err).Msg("apply seed file")
		}
		logger.Info().
			Int("users", result.Users).
			Int("queries", result.Queries).
			Int("evaluations", result.Evaluations).
			Int("files", result.Files).
			Msg("seed applied")
	}

	if *restorePath != "" {
		if err := restoreSnapshot(ctx, store, *restorePath); err != nil {
			logger.Fatal().Err(err).Str("path", *restorePath).Msg("restore snapshot")
		}
		logger.Info().Str("path", *restorePath).Msg("snapshot restored")
	}

	if *exportFormat != "" {
		if err := exportSnapshot(ctx, store, *exportFormat, os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("export snapshot")
		}
		return
	}

	if *table != "" {
		reporter := inspect.New(os.Stdout, store)
		if err := reporter.Structure(ctx, *table); err != nil {
			logger.Fatal().Err(err).Str("table", *table).Msg("inspect table")
		}
		return
	}

	if *inspectDB {
		if err := runInspect(ctx, store, cfg.Database.Path); err != nil {
			logger.Fatal().Err(err).Msg("inspect database")
		}
		return
	}

	// Default action: database summary
	reporter := inspect.New(os.Stdout, store)
	if err := reporter.Database(ctx, cfg.Database.Path, sqlite.Tables()); err != nil {
		logger.Fatal().Err(err).Msg("inspect database")
	}
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// seedAdmin creates the default admin user with a bcrypt-hashed password.
// An existing admin user is left untouched.
func seedAdmin(ctx context.Context, users repository.Users, logger zerolog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = users.Add(ctx, "admin", string(hash), "Admin", "Administrator")
	if repository.IsConflict(err) {
		logger.Info().Msg("admin user already exists")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info().Msg("admin user created")
	return nil
}

func exportSnapshot(ctx context.Context, store *sqlite.Store, format string, w io.Writer) error {
	c, err := codec.ByFormat(format)
	if err != nil {
		return err
	}
	snapshot, err := codec.Collect(ctx,
		sqlite.NewUsers(store), sqlite.NewQueries(store),
		sqlite.NewEvaluations(store), sqlite.NewFiles(store))
	if err != nil {
		return err
	}
	return c.Export(snapshot, w)
}

func restoreSnapshot(ctx context.Context, store *sqlite.Store, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	c, err := codec.ByFormat(format)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snapshot, err := c.Parse(f)
	if err != nil {
		return err
	}
	return codec.Restore(ctx, snapshot,
		sqlite.NewUsers(store), sqlite.NewQueries(store),
		sqlite.NewEvaluations(store), sqlite.NewFiles(store))
}

func runInspect(ctx context.Context, store *sqlite.Store, dbPath string) error {
	reporter := inspect.New(os.Stdout, store)

	if err := reporter.Database(ctx, dbPath, sqlite.Tables()); err != nil {
		return err
	}

	sections := []struct {
		title string
		print func() error
	}{
		{"Users", func() error { return reporter.Users(ctx, sqlite.NewUsers(store)) }},
		{"Queries", func() error { return reporter.Queries(ctx, sqlite.NewQueries(store)) }},
		{"Evaluations", func() error { return reporter.Evaluations(ctx, sqlite.NewEvaluations(store)) }},
		{"Files", func() error { return reporter.Files(ctx, sqlite.NewFiles(store)) }},
	}
	for _, s := range sections {
		fmt.Printf("\n%s\n", s.title)
		if err := s.print(); err != nil {
			return err
		}
	}
	return nil
}
