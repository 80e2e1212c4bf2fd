package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	_ "modernc.org/sqlite"
	_ "time/tzdata"

	emailPkg "evenex/internal/adapters/email"
	web "evenex/internal/adapters/http"
	"evenex/internal/adapters/http/perf"
	"evenex/internal/adapters/storage"
	eventStore "evenex/internal/adapters/storage/event"
	"evenex/internal/application/orchestrators"
	"evenex/internal/config"
	"evenex/internal/domain/calendar"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var configPath, addr string
	flags := pflag.NewFlagSet("evenex-server", pflag.ContinueOnError)
	flags.StringVarP(&configPath, "config", "c", "evenex.yaml", "path to the YAML config file")
	flags.StringVar(&addr, "addr", "", "listen address (overrides config and EVENEX_ADDR)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.Listen = addr
	}
	if err := setupLogger(cfg); err != nil {
		return err
	}

	zone, err := cfg.Location()
	if err != nil {
		return err
	}
	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	slog.Info("database_ready", "path", cfg.DBPath, "schema", storage.SchemaVersion)

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)
	events := eventStore.NewSQLiteStore(timedDB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedSamples && !cfg.IsProduction() {
		n, err := orchestrators.ExecuteSeedEvents(ctx, orchestrators.SeedEventsDeps{Events: events, Now: time.Now})
		if err != nil {
			return fmt.Errorf("seed events: %w", err)
		}
		slog.Info("sample_events_seeded", "inserted", n)
	}

	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_delivery_disabled", "reason", "EVENEX_RESEND_KEY is not set")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	handler, err := web.NewMux(ctx, web.Deps{
		Events:        events,
		Sender:        sender,
		Encoder:       calendar.NewEncoder(cfg.Calendar.TimestampMode),
		DisplayZone:   zone,
		Perf:          collector,
		PublicBaseURL: cfg.PublicBaseURL,
		TrustProxy:    cfg.TrustProxy,
		FromAddress:   cfg.Email.From,
		DebugPerf:     cfg.DebugPerf,
	}, web.Options{
		CSRFKey:       csrfKey,
		SecureCookies: cfg.IsProduction(),
		RateLimit:     cfg.RateLimit.Requests,
		RateInterval:  cfg.RateLimit.Interval,
		SlowRequestMs: cfg.SlowRequestMs,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Listen, "env", cfg.Env,
			"timestamp_mode", cfg.Calendar.TimestampMode, "timezone", cfg.Calendar.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogger installs the default slog handler: JSON in production, text otherwise.
func setupLogger(cfg *config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
