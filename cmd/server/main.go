package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sotoblanco/nftscope/internal/analysis"
	"github.com/sotoblanco/nftscope/internal/api"
	"github.com/sotoblanco/nftscope/internal/config"
	"github.com/sotoblanco/nftscope/internal/db"
	"github.com/sotoblanco/nftscope/internal/external"
	"github.com/sotoblanco/nftscope/internal/notifications"
	"github.com/sotoblanco/nftscope/internal/repository"
	"github.com/sotoblanco/nftscope/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║   NFTScope Sale Distribution v0.2    ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Schema setup failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	saleRepo := repository.NewSaleRepo(pool)
	runRepo := repository.NewRunRepo(pool)

	// External clients
	opensea := external.NewOpenSeaClient(cfg.OpenSeaAPIKey, external.OpenSeaOptions{})
	etherscan := external.NewEtherscanClient(cfg.EtherscanAPIKey, external.EtherscanOptions{})
	coingecko := external.NewCoinGeckoClient(external.CoinGeckoOptions{})

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// Analysis service
	svc := analysis.NewService(cfg, opensea, etherscan, coingecko, saleRepo, runRepo, notify)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(pool, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Analysis scheduler. Skip the immediate run when a fresh one exists.
	needsRun, err := runRepo.NeedsRefresh(ctx, cfg.RefreshHours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[SCHEDULER] Refresh check failed: %v\n", err)
		needsRun = true
	}
	if !needsRun {
		fmt.Printf("[SCHEDULER] Last analysis is under %d hours old, next run on schedule\n", cfg.RefreshHours)
	}

	sched := scheduler.New(svc, scheduler.Config{
		Interval:   time.Duration(cfg.RefreshHours) * time.Hour,
		RunTimeout: 10 * time.Minute,
		OnError: func(err error) {
			notify.Send(fmt.Sprintf("Analysis run failed: %v", err))
		},
	})
	if needsRun {
		sched.Start()
	} else {
		sched.StartWithoutInitialRun()
	}

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
