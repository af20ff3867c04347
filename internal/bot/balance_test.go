// internal/bot/balance_test.go
package bot

import (
	"context"
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quantfeed/solswap/internal/blockchain/solana"
	"github.com/quantfeed/solswap/internal/swap"
)

type fakeLister struct {
	holdings []solana.Holding
	err      error
}

func (f *fakeLister) TokenHoldings(_ context.Context, _ solanago.PublicKey) ([]solana.Holding, error) {
	return f.holdings, f.err
}

type fakeDecimals map[string]uint8

func (f fakeDecimals) Resolve(_ context.Context, mint string) (uint8, error) {
	d, ok := f[mint]
	if !ok {
		return 0, swap.Errorf(swap.KindChainRead, "unknown mint %s", mint)
	}
	return d, nil
}

type fakePricer map[string]float64

func (f fakePricer) Price(_ context.Context, mint string) (string, float64, error) {
	price, ok := f[mint]
	if !ok {
		return "", 0, errors.New("no trading pools found")
	}
	return "TKN", price, nil
}

func TestBalanceFetch(t *testing.T) {
	lister := &fakeLister{holdings: []solana.Holding{
		{Mint: "MintA", AmountRaw: 1_500_000},
		{Mint: "MintB", AmountRaw: 2_000_000_000},
	}}
	svc := NewBalanceService(lister,
		fakeDecimals{"MintA": 6, "MintB": 9},
		fakePricer{"MintA": 2.0, "MintB": 0.5},
		zaptest.NewLogger(t))

	entries, err := svc.Fetch(context.Background(), solanago.PublicKey{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byMint := map[string]BalanceEntry{}
	for _, e := range entries {
		byMint[e.Mint] = e
	}
	assert.InDelta(t, 1.5, byMint["MintA"].Amount, 1e-9)
	assert.InDelta(t, 3.0, byMint["MintA"].ValueUSD, 1e-9)
	assert.InDelta(t, 2.0, byMint["MintB"].Amount, 1e-9)
	assert.InDelta(t, 1.0, byMint["MintB"].ValueUSD, 1e-9)
}

func TestBalanceFetchSkipsUnpricedHoldings(t *testing.T) {
	lister := &fakeLister{holdings: []solana.Holding{
		{Mint: "MintA", AmountRaw: 1_000_000},
		{Mint: "NoPool", AmountRaw: 5},
		{Mint: "NoDecimals", AmountRaw: 5},
	}}
	svc := NewBalanceService(lister,
		fakeDecimals{"MintA": 6, "NoPool": 0},
		fakePricer{"MintA": 1.0},
		zaptest.NewLogger(t))

	entries, err := svc.Fetch(context.Background(), solanago.PublicKey{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "MintA", entries[0].Mint)
}

func TestBalanceFetchPropagatesListingFailure(t *testing.T) {
	svc := NewBalanceService(&fakeLister{err: errors.New("rpc unavailable")},
		fakeDecimals{}, fakePricer{}, zaptest.NewLogger(t))

	_, err := svc.Fetch(context.Background(), solanago.PublicKey{})
	assert.Error(t, err)
}
