package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

func main() {
	name := flag.String("name", "", "migration name")
	flag.Parse()

	if *name == "" {
		log.Fatal().Msg("migration name is required")
	}
	if strings.ContainsAny(*name, " \t/") {
		log.Fatal().Str("name", *name).Msg("migration name must not contain whitespace or slashes")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, *name)
	upPath := filepath.Join("db", "migrations", base+".up.sql")
	downPath := filepath.Join("db", "migrations", base+".down.sql")

	if err := os.MkdirAll(filepath.Dir(upPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create migrations dir")
	}

	if err := writeFile(upPath, "-- "+*name+" up\n"); err != nil {
		log.Fatal().Err(err).Msg("create up migration")
	}
	if err := writeFile(downPath, "-- "+*name+" down\n"); err != nil {
		log.Fatal().Err(err).Msg("create down migration")
	}

	log.Info().Str("up", upPath).Str("down", downPath).Msg("migration files created")
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
