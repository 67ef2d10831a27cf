package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tjfontaine/snaptrade-go/internal/config"
	"github.com/tjfontaine/snaptrade-go/internal/storage"
	"github.com/tjfontaine/snaptrade-go/internal/storage/sqlite"
	"github.com/tjfontaine/snaptrade-go/internal/telemetry"
	"github.com/tjfontaine/snaptrade-go/pkg/snaptrade"
)

// app carries state shared by every command. Client and store are opened on
// first use so offline commands never need credentials.
type app struct {
	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	logger *slog.Logger

	store    storage.UserStore
	shutdown func(context.Context) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		logger: slog.New(slog.DiscardHandler),
	}
}

// setup loads configuration and installs logging and tracing.
func (a *app) setup(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(a.errOut, cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		_, shutdown, err := telemetry.Setup(telemetry.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Writer:      a.errOut,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}
		a.shutdown = shutdown
	}
	return nil
}

// close flushes telemetry and closes the store.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log.format %q", cfg.Format)
	}
}

func (a *app) client() (*snaptrade.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return snaptrade.NewClient(a.cfg.API.ClientID, a.cfg.API.ConsumerKey,
		snaptrade.WithBaseURL(a.cfg.API.BaseURL),
		snaptrade.WithTimeout(a.cfg.API.Timeout),
		snaptrade.WithLogger(a.logger),
	)
}

func (a *app) userStore() (storage.UserStore, error) {
	if a.store == nil {
		store, err := sqlite.New(a.cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		a.store = store
	}
	return a.store, nil
}

// user resolves the secret for userID from the store.
func (a *app) user(ctx context.Context, userID string) (snaptrade.User, error) {
	if userID == "" {
		return snaptrade.User{}, errors.New("--user is required")
	}
	store, err := a.userStore()
	if err != nil {
		return snaptrade.User{}, err
	}
	u, err := store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		return snaptrade.User{}, fmt.Errorf("no stored secret for user %s; run register-user first", userID)
	}
	if err != nil {
		return snaptrade.User{}, err
	}
	return snaptrade.User{ID: u.ID, Secret: u.Secret}, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *snaptrade.Error
	if errors.As(err, &apiErr) && apiErr.Kind == snaptrade.KindStatus {
		return 2
	}
	return 1
}

func writeErr(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
}
