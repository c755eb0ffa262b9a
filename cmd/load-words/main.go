package main

import (
	"context"
	"flag"

	"sketch-guess/internal/config"
	"sketch-guess/internal/db"
	"sketch-guess/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	filePath := flag.String("file", "words.csv", "path to a list,word csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	logger.New(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	lists, err := db.ReadWordCSV(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("failed to read words")
	}

	ctx := context.Background()
	saved := 0
	for _, name := range db.SortedNames(lists) {
		if err := db.SaveWordList(ctx, conn, name, lists[name]); err != nil {
			log.Fatal().Err(err).Str("list", name).Msg("failed to save word list")
		}
		log.Info().Str("list", name).Int("words", len(lists[name])).Msg("word list saved")
		saved++
	}

	log.Info().Int("lists", saved).Msg("word lists loaded")
}
