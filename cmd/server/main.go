package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sketch-guess/internal/app"
	"sketch-guess/internal/config"
	"sketch-guess/internal/logger"
	"sketch-guess/internal/server"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vocab, listName := app.Vocabulary(ctx, cfg, lg)
	client, err := app.Classifier(ctx, cfg, vocab, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("classifier setup failed")
	}

	srv := server.New(server.Options{
		Config:       cfg,
		Vocabulary:   vocab,
		VocabularyID: listName,
		Classifier:   client,
		Logger:       lg,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Close()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	lg.Info().Str("addr", httpServer.Addr).Str("backend", cfg.ClassifierBackend).Msg("sketch-guess server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal().Err(err).Msg("server failed")
	}
}
