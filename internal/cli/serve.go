package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dolphinbot/dolphin/internal/biz/usecase"
	"github.com/dolphinbot/dolphin/internal/conf"
	"github.com/dolphinbot/dolphin/internal/data"
	"github.com/dolphinbot/dolphin/internal/infra/line"
	"github.com/dolphinbot/dolphin/internal/observability"
	"github.com/dolphinbot/dolphin/internal/server"
	"github.com/dolphinbot/dolphin/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Run:   runServe,
}

var serveSignalNotify = signal.Notify

func runServe(cmd *cobra.Command, args []string) {
	printHeader("Dolphin Webhook Server")

	// Load configuration
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		var cerr *conf.ConfigError
		if errors.As(err, &cerr) {
			printFail("Missing or invalid %s: %s", cerr.Field, cerr.Message)
		}
		log.Fatalf("Invalid config: %v", err)
	}

	observability.Setup(os.Stdout, cfg.Log.Level)
	logger := observability.Logger()

	if cfg.Server.SkipSignatureVerification {
		fmt.Println("⚠️  Signature verification is disabled")
	}
	if cfg.ConfigFile != "" {
		printOK("Config file: %s", cfg.ConfigFile)
	}

	// Initialize clients
	lineClient := line.NewClient(cfg.Line.ChannelAccessToken,
		line.WithAPIBase(cfg.Line.APIBase),
		line.WithTimeout(cfg.Line.Timeout),
	)

	// Initialize repository layer
	repos, err := data.NewRepositories(lineClient, cfg.ToStoreConfig())
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()
	printOK("Store backend: %s", cfg.Store.Backend)

	// Initialize usecase layer
	directory := cfg.Directory()
	if !directory.HasAnyRule() {
		fmt.Println("⚠️  No broadcast rules configured")
	} else {
		printOK("Broadcast rules: %d", len(directory.Rules()))
	}
	routerUC := usecase.NewRouterUsecase(directory, repos.ReplyState, repos.History, cfg.ToRouterConfig())

	// Initialize service layer
	webhookSvc := service.NewWebhookService(routerUC, repos.Message)
	sweeper := service.NewHistorySweeper(repos.History, cfg.Store.HistoryTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := server.NewServer(webhookSvc, server.Options{
		Addr:                      cfg.Addr(),
		ChannelSecret:             cfg.Line.ChannelSecret,
		SkipSignatureVerification: cfg.Server.SkipSignatureVerification,
		Version:                   version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	printOK("Listening on %s", cfg.Addr())

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	serveSignalNotify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop server", "error", err)
	}
}
