// Package app opens a data directory and wires its services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/checktrack/checktrack/internal/activity"
	"github.com/checktrack/checktrack/internal/categories"
	"github.com/checktrack/checktrack/internal/clock"
	"github.com/checktrack/checktrack/internal/config"
	"github.com/checktrack/checktrack/internal/gitops"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/logging"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/payments"
	"github.com/checktrack/checktrack/internal/store"
	"github.com/checktrack/checktrack/internal/store/csvstore"
	"github.com/checktrack/checktrack/internal/store/gormstore"
	"github.com/checktrack/checktrack/internal/users"
)

// ErrNotInitialized means the directory has no checktrack.yaml.
var ErrNotInitialized = errors.New("not a checktrack data directory (run 'checktrack init')")

// App holds the services for one data directory.
type App struct {
	Dir        string
	Config     *config.Config
	Logger     *log.Logger
	Clock      clock.Clock
	Store      store.Store
	Users      *users.Service
	Categories *categories.Service
	Activity   *activity.Log
	Payments   *payments.Service
	Pipeline   *importer.Pipeline
	Git        gitops.Repo
}

// LoadConfig reads checktrack.yaml, then .env and CHECKTRACK_* overrides.
func LoadConfig(dir string) (*config.Config, error) {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotInitialized)
	}
	if err := config.LoadEnvFile(dir); err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Open loads the data directory at dir. Log output goes to logOut.
func Open(ctx context.Context, dir string, logOut io.Writer) (*App, error) {
	cfg, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logOut, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.System{Location: loc}

	st, err := openStore(ctx, dir, cfg, clk)
	if err != nil {
		return nil, err
	}

	usr, err := users.Open(dir, id.UUID{})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	cats, err := categories.Load(dir)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	act := activity.NewLog(dir, clk)
	a := &App{
		Dir:        dir,
		Config:     cfg,
		Logger:     logger,
		Clock:      clk,
		Store:      st,
		Users:      usr,
		Categories: cats,
		Activity:   act,
		Payments: payments.NewService(st, usr,
			payments.WithActivity(act),
			payments.WithLogger(logger),
			payments.WithClock(clk),
		),
		Pipeline: importer.NewPipeline(clk, id.UUID{}, logger),
		Git: gitops.Repo{
			Dir:         dir,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		},
	}
	logger.Debug("opened data directory", "dir", dir, "store", cfg.Store.Driver)
	return a, nil
}

func openStore(ctx context.Context, dir string, cfg *config.Config, clk clock.Clock) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return gormstore.Open(ctx, cfg.Store.DatabaseURL, clk)
	default:
		return csvstore.New(dir, clk), nil
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Commit records the data directory state in git when auto-commit is on.
// Failures are logged, not returned.
func (a *App) Commit(ctx context.Context, message string) {
	if !a.Config.Git.AutoCommit || !gitops.IsRepo(a.Dir) {
		return
	}
	hash, err := a.Git.Commit(ctx, message)
	if err != nil {
		a.Logger.Warn("git commit failed", "err", err)
		return
	}
	if hash != "" {
		a.Logger.Debug("committed", "hash", hash, "message", message)
	}
}

// Record appends an activity entry for changes made outside the payment
// service. Failures are logged.
func (a *App) Record(actor model.User, action, details string, ids ...string) {
	if err := a.Activity.Record(actor.Username, action, details, ids...); err != nil {
		a.Logger.Error("recording activity", "action", action, "err", err)
	}
}
