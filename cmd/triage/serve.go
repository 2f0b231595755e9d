package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/mixelka/emailtriage/internal/api"
	"github.com/mixelka/emailtriage/internal/formatter"
	"github.com/mixelka/emailtriage/internal/ingest"
	"github.com/mixelka/emailtriage/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

var seedOnStart bool

// botOptions are extra Telegram client options, e.g. a local server URL
var botOptions []bot.Option

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the Telegram bot",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Load the sample mailbox before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, st, err := openService(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if seedOnStart {
		result, err := svc.Ingest(ctx, ingest.SampleMailbox(cfg.OwnerAddress, time.Now()))
		if err != nil {
			return err
		}
		logger.Info("sample mailbox loaded", "inserted", result.Inserted, "skipped", result.Skipped)
	}

	// The bot is built first so a bad token fails before anything listens
	var tgBot *telegram.Bot
	if cfg.TelegramEnabled() {
		tgBot, err = telegram.NewBot(telegram.BotDeps{
			Config:    cfg,
			Triage:    svc,
			Formatter: formatter.NewTelegramFormatter(),
			Logger:    logger,
			Options:   botOptions,
		})
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
	} else {
		logger.Info("telegram bot disabled")
	}

	e := api.NewServer(api.ServerDeps{
		Triage:      svc,
		Store:       st,
		StoreAPIKey: cfg.StoreAPIKey,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if tgBot != nil {
		go tgBot.Start(ctx)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down http server", "error", err)
	}

	logger.Info("stopped")
	return nil
}
