package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lettershow/wordclash/go/clients/vision_client"
	"github.com/lettershow/wordclash/go/internal/bridge"
	"github.com/lettershow/wordclash/go/internal/broadcast"
	"github.com/lettershow/wordclash/go/internal/game"
	"github.com/lettershow/wordclash/go/internal/gateway"
	"github.com/lettershow/wordclash/go/internal/words"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := loadConfig(getEnv("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	dict, err := words.Load(cfg.Game.DictionaryPath, game.MinWordLen)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Game.DictionaryPath).Msg("failed to load dictionary")
	}
	log.Info().Int("words", dict.Size()).Str("path", cfg.Game.DictionaryPath).Msg("dictionary loaded")

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, OCR requests will fail")
	}
	vision := vision_client.NewVisionClient(apiKey)
	vision.SetModel(cfg.Vision.Model)

	// The synchronizer starts sinkless; the websocket manager and the
	// optional NATS bridge attach below.
	sync := broadcast.NewSynchronizer(cfg.pairings())

	app := game.NewApp(dict, sync, clockwork.NewRealClock(), game.SessionConfig{
		Timing:    cfg.timing(),
		PairCount: len(cfg.Game.Pairings),
		TeamAName: cfg.Game.TeamA,
		TeamBName: cfg.Game.TeamB,
	})
	defer app.Close()

	svc := gateway.NewService(gateway.DefaultConnectionConfig(), app, vision)
	sync.AddSink(svc.Manager)

	if cfg.NATS.URL != "" {
		natsCfg := bridge.DefaultConfig(cfg.NATS.URL)
		if cfg.NATS.SubjectPrefix != "" {
			natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		}
		pub, err := bridge.Connect(natsCfg)
		if err != nil {
			log.Error().Err(err).Msg("NATS bridge unavailable, continuing without it")
		} else {
			defer pub.Close()
			sync.AddSink(pub)
		}
	}

	server := setupServer(cfg, svc)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go svc.Start(ctx)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()

	log.Info().Msg("shutdown complete")
}
