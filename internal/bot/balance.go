// internal/bot/balance.go
package bot

import (
	"context"
	"math"

	solanago "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quantfeed/solswap/internal/blockchain/solana"
	"github.com/quantfeed/solswap/internal/swap"
)

// holdingsLister enumerates the wallet's SPL token accounts.
type holdingsLister interface {
	TokenHoldings(ctx context.Context, owner solanago.PublicKey) ([]solana.Holding, error)
}

// pricer looks up a token's symbol and USD price.
type pricer interface {
	Price(ctx context.Context, mint string) (string, float64, error)
}

// BalanceEntry is one priced wallet holding.
type BalanceEntry struct {
	Mint     string
	Symbol   string
	Amount   float64
	ValueUSD float64
}

// BalanceService composes the chain enumeration with decimal resolution and
// price lookups. Price lookups run concurrently, one per holding.
type BalanceService struct {
	lister   holdingsLister
	decimals swap.DecimalsResolver
	prices   pricer
	logger   *zap.Logger
}

func NewBalanceService(lister holdingsLister, decimals swap.DecimalsResolver, prices pricer, logger *zap.Logger) *BalanceService {
	return &BalanceService{
		lister:   lister,
		decimals: decimals,
		prices:   prices,
		logger:   logger.Named("balance"),
	}
}

// Fetch returns the wallet's priced holdings. Tokens with no known trading
// pool are skipped rather than failing the whole listing.
func (s *BalanceService) Fetch(ctx context.Context, owner solanago.PublicKey) ([]BalanceEntry, error) {
	holdings, err := s.lister.TokenHoldings(ctx, owner)
	if err != nil {
		return nil, err
	}

	results := make([]*BalanceEntry, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	for i, holding := range holdings {
		g.Go(func() error {
			decimals, err := s.decimals.Resolve(gctx, holding.Mint)
			if err != nil {
				s.logger.Debug("skipping holding without decimals",
					zap.String("mint", holding.Mint), zap.Error(err))
				return nil
			}
			symbol, price, err := s.prices.Price(gctx, holding.Mint)
			if err != nil {
				s.logger.Debug("skipping holding without price",
					zap.String("mint", holding.Mint), zap.Error(err))
				return nil
			}
			amount := float64(holding.AmountRaw) / math.Pow10(int(decimals))
			results[i] = &BalanceEntry{
				Mint:     holding.Mint,
				Symbol:   symbol,
				Amount:   amount,
				ValueUSD: amount * price,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]BalanceEntry, 0, len(results))
	for _, entry := range results {
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}
