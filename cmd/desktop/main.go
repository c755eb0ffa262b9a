package main

import (
	"context"

	"sketch-guess/internal/app"
	"sketch-guess/internal/config"
	"sketch-guess/internal/desktop"
	"sketch-guess/internal/desktop/window"
	"sketch-guess/internal/game"
	"sketch-guess/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vocab, _ := app.Vocabulary(ctx, cfg, lg)
	client, err := app.Classifier(ctx, cfg, vocab, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("classifier setup failed")
	}

	hud := desktop.NewHUD()
	session := game.NewSession(game.Config{
		Vocabulary:       vocab,
		Classifier:       client,
		Sinks:            []game.Sinks{hud.Sinks()},
		WinDelay:         cfg.WinDelay(),
		DropStaleResults: cfg.DropStaleResults,
		Logger:           lg,
	})
	defer session.Close()
	session.Start()

	if err := window.Run(window.New(session, hud, lg)); err != nil {
		lg.Fatal().Err(err).Msg("desktop window failed")
	}
}
