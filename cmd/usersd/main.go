// Command usersd serves the users API.
//
// Configuration is read from an optional file (-config) and USERSD_ environment variables.
// Invalid configuration is reported as one message listing every offending key.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Azhovan/sieve/internal/config"
	"github.com/Azhovan/sieve/internal/logger"
	"github.com/Azhovan/sieve/internal/users"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "usersd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML, JSON or TOML config file")
	envFile := flag.String("env-file", "", "path to a .env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dotEnv []string
	if *envFile != "" {
		dotEnv = append(dotEnv, *envFile)
	}

	cfg, err := config.Load(ctx, config.Sources(*configPath, dotEnv...))
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	handler := users.NewHandler(users.NewStore(), cfg.Validation.Options())
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      logger.Middleware(log)(handler.Routes()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return serve(ctx, srv, cfg.Server, log)
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, cfg config.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
