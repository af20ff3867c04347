// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quantfeed/solswap/internal/blockchain/solana"
	"github.com/quantfeed/solswap/internal/bot"
	"github.com/quantfeed/solswap/internal/config"
	"github.com/quantfeed/solswap/internal/dex/jupiter"
	"github.com/quantfeed/solswap/internal/market"
	"github.com/quantfeed/solswap/internal/swap"
	"github.com/quantfeed/solswap/internal/wallet"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	var logger *zap.Logger
	if cfg.DebugLogging {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		logger.Fatal("Failed to load wallet", zap.Error(err))
	}
	logger.Info("Wallet loaded", zap.String("public_key", w.PublicKey.String()))

	chain := solana.NewClient(cfg.RPCURL, logger)
	resolver := solana.NewDecimalsResolver(chain, logger)
	broadcaster := solana.NewBroadcaster(chain.RPC(), solana.BroadcastConfig{
		SkipPreflight:       cfg.SkipPreflight,
		Commitment:          solana.CommitmentFromString(cfg.Commitment),
		ConfirmationTimeout: time.Duration(cfg.ConfirmTimeoutSeconds) * time.Second,
		Retry:               solana.DefaultRetryPolicy(cfg.MaxRetries),
	}, logger)

	aggregator := jupiter.NewClient(jupiter.Config{
		BaseURL:                cfg.JupiterURL,
		PriorityLevel:          cfg.PriorityLevel,
		MaxPriorityFeeLamports: cfg.MaxPriorityFeeLamports,
	}, logger)

	orchestrator := swap.NewOrchestrator(&swap.OrchestratorConfig{
		Decimals:               resolver,
		Quotes:                 aggregator,
		Builder:                aggregator,
		Signer:                 w,
		Broadcaster:            broadcaster,
		SignerPublicKey:        w.PublicKey.String(),
		DefaultSlippagePercent: cfg.DefaultSlippagePercent,
		Logger:                 logger,
	})

	prices := market.NewClient(cfg.DexScreenerURL, logger)
	balances := bot.NewBalanceService(chain, resolver, prices, logger)

	b, err := bot.NewBot(&bot.Config{
		Token:        cfg.TelegramToken,
		Orchestrator: orchestrator,
		Balances:     balances,
		Market:       prices,
		Owner:        w.PublicKey,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to start bot", zap.Error(err))
	}

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Bot execution error", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
