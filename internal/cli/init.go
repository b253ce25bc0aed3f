// Package cli implements the spendwise subcommands and the bootstrap they
// share: env loading, logging, configuration, persisted session state and
// the gateway.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"spendwise/internal/api"
	"spendwise/internal/backend"
	"spendwise/internal/config"
	"spendwise/internal/coordinator"
	"spendwise/internal/log"
	"spendwise/internal/render"
	"spendwise/internal/session"
	"spendwise/internal/storage"
)

// SetupLogger initializes structured logging on stderr at level.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level, slog.LevelWarn)
	cfg.Component = log.ComponentCLI
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		return nil, err
	}
	return cfg, nil
}

// App is everything a command needs for one invocation.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Session  *session.Store
	Gateway  api.Gateway
	Renderer *render.Renderer
	Out      io.Writer

	state   *storage.StateStore
	cleanup backend.CleanupFunc
}

// Open bootstraps the app: config, state database, gateway and session
// store. The session is not restored yet.
func Open(ctx context.Context) (*App, error) {
	LoadEnvFile()
	logger := SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := LoadAndValidateConfig(logger)
	if err != nil {
		return nil, err
	}
	logger = SetupLogger(cfg.LogLevel)
	logger.DebugContext(ctx, "Starting", log.FieldOperation, log.OpStartup, log.FieldBackend, cfg.APIBackend)

	state, err := storage.Open(cfg.StateDBPath, storage.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to open state database", log.FieldError, err, log.FieldErrorType, log.ErrorTypeDatabase, log.FieldDBPath, cfg.StateDBPath)
		return nil, fmt.Errorf("open state database: %w", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		state.Close()
		return nil, err
	}
	sess := session.New()
	result, err := backend.NewFactory(logger).CreateBackend(backendCfg, sess)
	if err != nil {
		state.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Session:  session.NewStore(sess, result.Gateway, storage.NewTokenStore(state), logger),
		Gateway:  result.Gateway,
		Renderer: render.New(cfg.Currency, cfg.DefaultPayer),
		Out:      os.Stdout,
		state:    state,
		cleanup:  result.Cleanup,
	}, nil
}

// Close releases the state database and backend resources.
func (a *App) Close() {
	if a.cleanup != nil {
		if err := a.cleanup(); err != nil {
			a.Logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}
	if err := a.state.Close(); err != nil {
		a.Logger.Warn("Failed to close state database", log.FieldError, err)
	}
}

// CoordinatorOptions carries config into every coordinator. Coordinators
// log through the logger that run puts on the context.
func (a *App) CoordinatorOptions() []coordinator.Option {
	return []coordinator.Option{
		coordinator.WithDefaultPayer(a.Config.DefaultPayer),
		coordinator.WithTopLimit(a.Config.TopLimit),
	}
}

// Print renders markdown to the app output.
func (a *App) Print(markdown string) error {
	return render.Print(a.Out, markdown)
}

func (a *App) print(build func(b *strings.Builder)) error {
	var b strings.Builder
	build(&b)
	return a.Print(b.String())
}
