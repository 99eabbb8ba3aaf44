// main.go
//
// Cryptix game server entry point.
// Loads .env and the environment, opens (and migrates) the SQLite store,
// seeds the word corpus, then serves HTTP until SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/config"
	"github.com/robalobadob/cryptix/internal/game"
	"github.com/robalobadob/cryptix/internal/httpserver"
	"github.com/robalobadob/cryptix/internal/store"
	"github.com/robalobadob/cryptix/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(ctx context.Context, cfg config.Config) error {
	st, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	rules := cfg.Rules()
	if cfg.SeedWords {
		list, err := words.Load(cfg.WordsFile, rules.WordLength)
		if err != nil {
			return err
		}
		if _, err := words.Seed(ctx, st, list, false); err != nil {
			return err
		}
	}

	loc, err := cfg.QuotaLocation()
	if err != nil {
		return err
	}
	engine := game.NewEngine(st, rules, game.WithLocation(loc))
	srv := httpserver.New(
		engine,
		auth.NewService(st),
		auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL()),
		st,
		httpserver.Options{
			CookieName:   cfg.CookieName,
			ClientOrigin: cfg.ClientOrigin,
			Secure:       cfg.Production(),
		},
	)

	log.Info().
		Str("port", cfg.Port).
		Int("maxAttempts", rules.MaxAttempts).
		Int("maxGamesPerDay", rules.MaxGamesPerDay).
		Str("quotaZone", loc.String()).
		Msg("starting cryptix server")
	if err := srv.Start(ctx, cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
