package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"portfolio/internal/config"
	"portfolio/internal/logging"
	"portfolio/internal/mail"
	"portfolio/internal/server"
	"portfolio/internal/services"
	"portfolio/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 60 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(&cfg.App)
	log.Info().
		Str("version", cfg.App.Version).
		Bool("debug", cfg.App.Debug).
		Str("addr", cfg.App.Addr()).
		Msgf("Starting %s", cfg.App.Name)

	// The record store is optional; a failed connection leaves the API
	// running without persistence.
	st := openStore(cfg, logging.Component(log, "store"))

	mailer := newMailer(cfg, logging.Component(log, "mail"))

	contactSvc := services.NewContactService(st, mailer, services.ContactOptions{
		Recipient:            cfg.Email.Recipient,
		OwnerName:            cfg.Email.OwnerName,
		PersistFailurePolicy: cfg.Contact.PersistFailurePolicy,
		StoreTimeout:         cfg.Database.Timeout,
		MailTimeout:          cfg.Email.Timeout,
	}, logging.Component(log, "contact"))
	healthSvc := services.NewHealthService(st, cfg.Database.Timeout)

	srv := server.New(cfg, contactSvc, healthSvc, logging.Component(log, "http"))

	httpServer := &http.Server{
		Addr:         cfg.App.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		closeStore(st, log)
		log.Fatal().Err(err).Msg("Server failed to start")
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Starting graceful shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Msg("Shutdown timeout exceeded, forcing close")
			_ = httpServer.Close()
		}
	}
	closeStore(st, log)

	log.Info().Msg("Server shutdown complete")
}

func openStore(cfg *config.Config, log zerolog.Logger) store.Store {
	if !cfg.Database.Enabled() {
		log.Info().Msg("MONGODB_URI not set, submissions will not be stored")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	defer cancel()

	st, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver()).Msg("record store connection failed, continuing without persistence")
		return nil
	}
	log.Info().Str("driver", cfg.Database.Driver()).Msg("Connected to record store")
	return st
}

func newMailer(cfg *config.Config, log zerolog.Logger) mail.Mailer {
	if !cfg.Email.Enabled {
		log.Warn().Msg("email disabled, messages will only be logged")
		return mail.NewLogMailer(log)
	}
	log.Info().
		Str("host", cfg.Email.SMTPHost).
		Int("port", cfg.Email.SMTPPort).
		Msg("SMTP mailer configured")
	return mail.NewSMTPMailer(cfg.Email, log)
}

func closeStore(st store.Store, log zerolog.Logger) {
	if st == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing record store")
	}
}
