// Package main boots the persona studio service and wires application
// dependencies.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kotone/persona-studio/internal/config"
	"github.com/kotone/persona-studio/internal/generation"
	"github.com/kotone/persona-studio/internal/models"
	"github.com/kotone/persona-studio/internal/repository"
	"github.com/kotone/persona-studio/internal/server"
	"github.com/kotone/persona-studio/internal/tts"
)

func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	slog.Info("configuration loaded", "provider", cfg.LLMProvider, "chat_model", cfg.ChatModel, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}

	llm, err := models.New(ctx, cfg)
	if err != nil {
		// The studio still serves; proxy calls report the missing credential.
		slog.Warn("model provider unavailable", "error", err)
		llm = models.Unavailable(err.Error())
	}

	gen := generation.NewService(llm, cfg.UtilityModel)
	ttsClient := tts.NewClient(cfg.TTSBaseURL)

	serverCfg := server.DefaultConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	serverCfg.Debug = cfg.Debug

	srv := server.New(serverCfg,
		server.NewProxyHandler(llm, ttsClient),
		server.NewStudioHandler(store, gen, ttsClient),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("studio shutdown complete")
}
