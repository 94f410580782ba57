package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/httpserver"
	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := puzzle.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzle library")
	}
	log.Info().Int("puzzles", puzzle.Stats()).Msg("puzzle library loaded")

	dbPath := getEnv("DB_PATH", "./data/connections.db")
	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var st store.Store
	switch kind := getEnv("GAME_STORE", "sqlite"); kind {
	case "memory":
		st = store.NewMemoryStore()
	case "sqlite":
		st = store.NewSQLiteStore(db)
	default:
		log.Fatal().Str("GAME_STORE", kind).Msg("unknown game store (want sqlite or memory)")
	}

	srv := httpserver.New(st, db, httpserver.ConfigFromEnv(puzzle.All()))
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting connections server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
