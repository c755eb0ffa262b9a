// Package app wires configuration into the pieces both front ends share:
// the vocabulary and the classifier client.
package app

import (
	"context"
	"errors"
	"time"

	"sketch-guess/internal/classifier"
	"sketch-guess/internal/config"
	"sketch-guess/internal/db"
	"sketch-guess/internal/game"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Vocabulary loads the configured word list from Postgres. Without a
// database, or when loading fails, the built-in words are used. A missing
// "default" list is seeded from the built-in words.
func Vocabulary(ctx context.Context, cfg config.Config, log zerolog.Logger) (game.Vocabulary, string) {
	if cfg.DatabaseURL == "" {
		return game.DefaultVocabulary(), "builtin"
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable; using built-in words")
		return game.DefaultVocabulary(), "builtin"
	}
	defer closeDB(conn)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	words, err := loadOrSeed(ctx, conn, cfg.VocabularyList)
	if err != nil {
		log.Warn().Err(err).Str("list", cfg.VocabularyList).Msg("word list unavailable; using built-in words")
		return game.DefaultVocabulary(), "builtin"
	}
	vocab, err := game.NewVocabulary(words)
	if err != nil {
		log.Warn().Err(err).Str("list", cfg.VocabularyList).Msg("word list is empty; using built-in words")
		return game.DefaultVocabulary(), "builtin"
	}
	log.Info().Str("list", cfg.VocabularyList).Int("words", vocab.Len()).Msg("vocabulary loaded")
	return vocab, cfg.VocabularyList
}

func loadOrSeed(ctx context.Context, conn *gorm.DB, name string) ([]string, error) {
	words, err := db.LoadWordList(ctx, conn, name)
	if !errors.Is(err, db.ErrWordListNotFound) || name != "default" {
		return words, err
	}
	if err := db.CreateWordList(ctx, conn, name, game.DefaultWords); err != nil && !errors.Is(err, db.ErrWordListExists) {
		return nil, err
	}
	return db.LoadWordList(ctx, conn, name)
}

func closeDB(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Classifier builds the configured backend and starts loading it in the
// background. The returned client refuses requests until the backend is
// ready.
func Classifier(ctx context.Context, cfg config.Config, vocab game.Vocabulary, log zerolog.Logger) (*classifier.Client, error) {
	backend, err := classifier.NewBackend(cfg, vocab.Words())
	if err != nil {
		return nil, err
	}
	client := classifier.NewClient(backend, classifier.Options{
		Timeout:      cfg.ClassifierTimeout(),
		PollInterval: cfg.ClassifierReadyPoll(),
		Logger:       log,
	})
	go func() {
		if err := client.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("backend", backend.Name()).Msg("classifier never became ready")
		}
	}()
	return client, nil
}
