package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tldrgram/internal/bot"
	"tldrgram/internal/config"
	"tldrgram/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	if cfg.Bot.Token == "" {
		log.ErrorContext(ctx, "TELEGRAM_TOKEN is required",
			"envVar", "TELEGRAM_TOKEN")

		return
	}

	if cfg.Web.InsecureSkipVerify {
		log.WarnContext(ctx, "TLS certificate verification is disabled for web pages",
			"envVar", "WEB_INSECURE_SKIP_VERIFY")
	}

	p, err := pipeline.Open(cfg, pipeline.WithLogger(log))
	if err != nil {
		var pipelineErr *pipeline.Error
		if errors.As(err, &pipelineErr) && pipelineErr.Kind == pipeline.KindMissingCredential {
			log.ErrorContext(ctx, "HF_API_TOKEN is required",
				"envVar", "HF_API_TOKEN")

			return
		}

		log.ErrorContext(ctx, "Failed to initialize summarization endpoint",
			"error", err,
			"provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model)

		return
	}
	log.InfoContext(ctx, "Pipeline is initialized",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"credential", cfg.Credential)

	botInst, err := bot.New(cfg.Bot.Token, p, cfg.Bot.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.Bot.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.Bot.AllowedUsers))

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}
