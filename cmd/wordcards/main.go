package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/conorfennell/wordcards/internal/cache"
	"github.com/conorfennell/wordcards/internal/config"
	"github.com/conorfennell/wordcards/internal/deck"
	"github.com/conorfennell/wordcards/internal/generator"
	"github.com/conorfennell/wordcards/internal/srs"
	"github.com/conorfennell/wordcards/internal/storage"
	"github.com/conorfennell/wordcards/internal/sync"
	"github.com/conorfennell/wordcards/internal/web"
)

const GracefulShutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	db, err := storage.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	log.Info().Str("db", cfg.DB).Msg("database opened")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, closeGen, err := buildGenerator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up card generator")
	}
	defer closeGen()

	cards := deck.NewService(db, gen, srs.NewScheduler(srs.SystemClock{}))
	syncer := sync.New(db, cards, cfg.ReposDir)

	if cfg.SyncOnce {
		if _, err := syncer.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("sync failed")
		}
		return
	}

	if cfg.SyncInterval > 0 {
		sched, err := syncer.Schedule(ctx, cfg.SyncInterval)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to schedule sync")
		}
		defer sched.Stop()
		log.Info().Dur("interval", cfg.SyncInterval).Msg("periodic sync enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(db, cards, syncer).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Info().Msg("got quit signal...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown")
		}
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", cfg.Addr).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shut down")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// buildGenerator returns the configured generator, wrapped in the Redis
// cache when one is configured, and a func releasing its clients.
func buildGenerator(ctx context.Context, cfg *config.Config) (generator.Generator, func(), error) {
	var gen generator.Generator
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	switch cfg.AIProvider {
	case config.ProviderGemini:
		g, err := generator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.PlaceholderImage)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { g.Close() })
		gen = g
		log.Info().Str("model", cfg.GeminiModel).Msg("using gemini generator")
	default:
		gen = generator.Offline{ImageURL: cfg.PlaceholderImage}
		log.Warn().Msg("using offline generator, cards get placeholder content")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		gen = cache.New(gen, rdb, cfg.CacheTTL)
		log.Info().Str("redis", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("generation cache enabled")
	}

	return gen, closeAll, nil
}
