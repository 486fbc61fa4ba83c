package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/99designs/keyring"

	"aiwriter/internal/config"
	"aiwriter/internal/database"
	"aiwriter/internal/events"
	"aiwriter/internal/metrics"
	"aiwriter/internal/services"
)

const keyringPasswordEnv = "AIWRITER_KEYRING_PASSWORD"

// App holds the wired services for one command run.
type App struct {
	ctx      context.Context
	cfg      config.Config
	logger   *slog.Logger
	Services *services.DbServices
	Keys     *services.KeyringService
	Metrics  *metrics.Metrics
	dbClose  func() error
}

func NewApp(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// startup opens the database and keychain and wires the services. The
// context is kept for services that need one outside a request.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	db, err := database.Init(database.Config{
		Path:     a.cfg.DatabasePath,
		LogLevel: a.cfg.GormLogLevel(),
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.dbClose = sqlDB.Close
	}

	a.Keys = openKeys(a.cfg, a.logger)
	a.Metrics = metrics.New()
	a.Services = services.NewDbServices(db, services.Options{
		Keys:            a.Keys,
		BaseURLs:        a.cfg.BaseURLs,
		DefaultSettings: a.cfg.Settings(),
		Metrics:         a.Metrics,
		Logger:          a.logger,
	})
	if err := a.Services.Models.Startup(ctx); err != nil {
		a.shutdown(ctx)
		return fmt.Errorf("failed to load model catalog: %w", err)
	}
	a.Services.Settings.Startup(ctx)
	events.EnableLogEmitter(a.logger)
	return nil
}

// shutdown releases what startup opened. It is safe to call more than once.
func (a *App) shutdown(ctx context.Context) {
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
		a.dbClose = nil
	}
}

// csrfSecret returns the configured secret or a random one. Tokens minted
// with a random secret stop validating after a restart.
func (a *App) csrfSecret() ([]byte, error) {
	if a.cfg.CSRFSecret != "" {
		return []byte(a.cfg.CSRFSecret), nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	a.logger.Warn("csrf_secret is not set; using a random secret for this run")
	return []byte(hex.EncodeToString(buf)), nil
}

// openKeys uses the encrypted file backend when keyring_dir is set and the
// OS keychain otherwise. With neither usable, keys come from the environment.
func openKeys(cfg config.Config, logger *slog.Logger) *services.KeyringService {
	var (
		keys *services.KeyringService
		err  error
	)
	if cfg.KeyringDir != "" {
		keys, err = services.NewKeyringServiceFromConfig(keyring.Config{
			ServiceName:      "aiwriter",
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          cfg.KeyringDir,
			FilePasswordFunc: keyring.FixedStringPrompt(os.Getenv(keyringPasswordEnv)),
		})
	} else {
		keys, err = services.NewKeyringService()
	}
	if err != nil {
		logger.Warn("keyring unavailable; API keys are read from the environment only", "error", err)
		return services.NewKeyringServiceWith(nil)
	}
	return keys
}
