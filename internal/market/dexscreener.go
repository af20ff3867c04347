// internal/market/dexscreener.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Client reads token prices and pool listings from the DexScreener API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Named("dexscreener"),
	}
}

// Pair is one liquidity pool trading the token.
type Pair struct {
	DexID        string
	PairAddress  string
	Name         string
	Symbol       string
	PriceUSD     float64
	Volume24hUSD float64
	LiquidityUSD float64
}

type pairsResponse struct {
	Pairs []struct {
		DexID       string `json:"dexId"`
		PairAddress string `json:"pairAddress"`
		BaseToken   struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"baseToken"`
		PriceUsd string `json:"priceUsd"`
		Volume   struct {
			H24 float64 `json:"h24"`
		} `json:"volume"`
		Liquidity struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
	} `json:"pairs"`
}

// TokenPairs returns the pools trading the given mint, sorted by 24h volume
// descending.
func (c *Client) TokenPairs(ctx context.Context, mint string) ([]Pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest/dex/tokens/"+mint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token lookup returned status %d", resp.StatusCode)
	}

	var payload pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed token response: %w", err)
	}

	pairs := make([]Pair, 0, len(payload.Pairs))
	for _, p := range payload.Pairs {
		price, _ := strconv.ParseFloat(p.PriceUsd, 64)
		pairs = append(pairs, Pair{
			DexID:        p.DexID,
			PairAddress:  p.PairAddress,
			Name:         p.BaseToken.Name,
			Symbol:       p.BaseToken.Symbol,
			PriceUSD:     price,
			Volume24hUSD: p.Volume.H24,
			LiquidityUSD: p.Liquidity.USD,
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Volume24hUSD > pairs[j].Volume24hUSD
	})
	return pairs, nil
}

// Price returns the token symbol and its USD price from the most liquid
// pool, or an error when no pool trades it.
func (c *Client) Price(ctx context.Context, mint string) (string, float64, error) {
	pairs, err := c.TokenPairs(ctx, mint)
	if err != nil {
		return "", 0, err
	}
	if len(pairs) == 0 {
		return "", 0, fmt.Errorf("no trading pools found for %s", mint)
	}
	return pairs[0].Symbol, pairs[0].PriceUSD, nil
}
