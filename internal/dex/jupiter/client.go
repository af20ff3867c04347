// internal/dex/jupiter/client.go
package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quantfeed/solswap/internal/swap"
)

const noRouteErrorCode = "COULD_NOT_FIND_ANY_ROUTE"

// Config tunes the aggregator client. The priority fee is a fixed tier with
// a lamport cap: a policy knob operators use to trade execution cost against
// speed, never negotiated per swap.
type Config struct {
	BaseURL                string
	PriorityLevel          string
	MaxPriorityFeeLamports uint64
	HTTPTimeout            time.Duration
}

// Client talks to the Jupiter v6 aggregator API. It implements both the
// quote and transaction-build halves of the swap pipeline.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.PriorityLevel == "" {
		cfg.PriorityLevel = "veryHigh"
	}
	if cfg.MaxPriorityFeeLamports == 0 {
		cfg.MaxPriorityFeeLamports = 2_000_000
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger.Named("jupiter"),
	}
}

type quoteResponse struct {
	InputMint            string      `json:"inputMint"`
	OutputMint           string      `json:"outputMint"`
	InAmount             string      `json:"inAmount"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       json.Number `json:"priceImpactPct"`
	Error                string      `json:"error"`
	ErrorCode            string      `json:"errorCode"`
}

// Quote requests a priced route. A provider-reported missing route is a
// no-route error; transport failures and responses missing required fields
// are provider errors, never silently defaulted.
func (c *Client) Quote(ctx context.Context, inputMint, outputMint string, amountRaw uint64, slippageBps int) (*swap.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(amountRaw, 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v6/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "failed to create quote request: %v", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "quote request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "failed to read quote response: %v", err)
	}

	var parsed quoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, swap.Errorf(swap.KindProvider, "malformed quote response: %v", err)
	}

	if parsed.Error != "" || parsed.ErrorCode != "" {
		if parsed.ErrorCode == noRouteErrorCode {
			return nil, swap.Errorf(swap.KindNoRoute, "no route for %s -> %s", inputMint, outputMint)
		}
		return nil, swap.Errorf(swap.KindProvider, "quote rejected: %s", providerErrorText(parsed))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, swap.Errorf(swap.KindProvider, "quote returned status %d", resp.StatusCode)
	}

	return buildQuote(parsed, body)
}

func buildQuote(parsed quoteResponse, body []byte) (*swap.Quote, error) {
	if parsed.InputMint == "" || parsed.OutputMint == "" {
		return nil, swap.Errorf(swap.KindProvider, "quote response missing mint fields")
	}
	inAmount, err := parseAmountField("inAmount", parsed.InAmount)
	if err != nil {
		return nil, err
	}
	outAmount, err := parseAmountField("outAmount", parsed.OutAmount)
	if err != nil {
		return nil, err
	}
	minOut, err := parseAmountField("otherAmountThreshold", parsed.OtherAmountThreshold)
	if err != nil {
		return nil, err
	}
	priceImpact, _ := parsed.PriceImpactPct.Float64()

	return &swap.Quote{
		InputMint:       parsed.InputMint,
		OutputMint:      parsed.OutputMint,
		InAmount:        swap.TokenAmount{Raw: inAmount},
		OutAmount:       swap.TokenAmount{Raw: outAmount},
		MinOutAmount:    swap.TokenAmount{Raw: minOut},
		PriceImpactPct:  priceImpact,
		SlippageBps:     parsed.SlippageBps,
		ProviderPayload: json.RawMessage(body),
	}, nil
}

func parseAmountField(name, value string) (uint64, error) {
	if value == "" {
		return 0, swap.Errorf(swap.KindProvider, "quote response missing %s", name)
	}
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, swap.Errorf(swap.KindProvider, "quote response has bad %s %q: %v", name, value, err)
	}
	return amount, nil
}

func providerErrorText(parsed quoteResponse) string {
	if parsed.Error != "" {
		return parsed.Error
	}
	return parsed.ErrorCode
}

type swapRequest struct {
	QuoteResponse             json.RawMessage   `json:"quoteResponse"`
	UserPublicKey             string            `json:"userPublicKey"`
	WrapAndUnwrapSol          bool              `json:"wrapAndUnwrapSol"`
	PrioritizationFeeLamports prioritizationFee `json:"prioritizationFeeLamports"`
}

type prioritizationFee struct {
	PriorityLevelWithMaxLamports priorityLevelWithMaxLamports `json:"priorityLevelWithMaxLamports"`
}

type priorityLevelWithMaxLamports struct {
	MaxLamports   uint64 `json:"maxLamports"`
	Global        bool   `json:"global"`
	PriorityLevel string `json:"priorityLevel"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
	Error           string `json:"error"`
}

// Build asks the aggregator for a serialized, unsigned transaction for the
// quote. Native SOL on either side is wrapped and unwrapped automatically. A
// stale or rejected quote surfaces as a provider error.
func (c *Client) Build(ctx context.Context, quote *swap.Quote, userPublicKey string) ([]byte, error) {
	payload, err := json.Marshal(swapRequest{
		QuoteResponse:    quote.ProviderPayload,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
		PrioritizationFeeLamports: prioritizationFee{
			PriorityLevelWithMaxLamports: priorityLevelWithMaxLamports{
				MaxLamports:   c.cfg.MaxPriorityFeeLamports,
				Global:        false,
				PriorityLevel: c.cfg.PriorityLevel,
			},
		},
	})
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "failed to encode swap request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v6/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "failed to create swap request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "swap request failed: %v", err)
	}
	defer resp.Body.Close()

	var parsed swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, swap.Errorf(swap.KindProvider, "malformed swap response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		return nil, swap.Errorf(swap.KindProvider, "swap build rejected (status %d): %s", resp.StatusCode, parsed.Error)
	}
	if parsed.SwapTransaction == "" {
		return nil, swap.Errorf(swap.KindProvider, "swap response missing transaction")
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.SwapTransaction)
	if err != nil {
		return nil, swap.Errorf(swap.KindProvider, "failed to decode swap transaction: %v", err)
	}

	c.logger.Debug("swap transaction built",
		zap.String("input_mint", quote.InputMint),
		zap.String("output_mint", quote.OutputMint),
		zap.Int("tx_bytes", len(raw)))
	return raw, nil
}
