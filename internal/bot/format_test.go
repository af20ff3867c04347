// internal/bot/format_test.go
package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfeed/solswap/internal/market"
	"github.com/quantfeed/solswap/internal/swap"
)

func testPreview() *swap.QuotePreview {
	return &swap.QuotePreview{
		Quote: &swap.Quote{
			InputMint:      swap.WrappedSolMint,
			OutputMint:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			InAmount:       swap.TokenAmount{Raw: 1_000_000_000, Decimals: 9},
			OutAmount:      swap.TokenAmount{Raw: 500_000, Decimals: 6},
			MinOutAmount:   swap.TokenAmount{Raw: 450_000, Decimals: 6},
			PriceImpactPct: 0.01,
			SlippageBps:    1000,
		},
		Price: 0.0005,
		Pending: swap.PendingConfirmation{
			AmountRaw:   1_000_000_000,
			SlippageBps: 1000,
			InputMint:   swap.WrappedSolMint,
			OutputMint:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		},
	}
}

func TestRenderQuoteSurvivesConfirmationDecode(t *testing.T) {
	preview := testPreview()
	prompt := renderQuote(preview)

	decoded, err := swap.DecodeConfirmation(preview.Pending.CallbackData(), prompt)
	require.NoError(t, err)
	assert.Equal(t, preview.Pending, decoded)
}

func TestRenderQuoteContent(t *testing.T) {
	prompt := renderQuote(testPreview())

	assert.Contains(t, prompt, "Input: 1 tokens")
	assert.Contains(t, prompt, "Output: 0.5 tokens")
	assert.Contains(t, prompt, "Price: 0.0005000")
	assert.Contains(t, prompt, "Slippage: 10.00%")
	assert.Contains(t, prompt, "Minimum received: 0.45")
}

func TestRenderResult(t *testing.T) {
	success := renderResult(&swap.Result{Signature: "5Sig", Confirmed: true}, nil)
	assert.Contains(t, success, "https://solscan.io/tx/5Sig")

	timedOut := renderResult(&swap.Result{Signature: "5Sig"},
		swap.Errorf(swap.KindTimedOut, "confirmation not observed"))
	assert.Contains(t, timedOut, "outcome is unknown")
	assert.Contains(t, timedOut, "https://solscan.io/tx/5Sig")

	rejected := renderResult(nil, swap.Errorf(swap.KindBroadcast, "rejected"))
	assert.Contains(t, rejected, "rejected by the network")
	assert.NotContains(t, rejected, "solscan.io")
}

func TestErrorTextCoversEveryKind(t *testing.T) {
	kinds := []swap.Kind{
		swap.KindInvalidRequest,
		swap.KindChainRead,
		swap.KindNoRoute,
		swap.KindProvider,
		swap.KindSigning,
		swap.KindBroadcast,
		swap.KindTimedOut,
		swap.KindInvalidConfirmation,
	}
	seen := make(map[string]bool)
	for _, kind := range kinds {
		text := errorText(swap.Errorf(kind, "cause"))
		assert.NotEmpty(t, text)
		assert.False(t, strings.Contains(text, string(kind)), "kind name should not leak to chat")
		seen[text] = true
	}
	// Each kind gets its own message.
	assert.Len(t, seen, len(kinds))
}

func TestRenderBalances(t *testing.T) {
	assert.Equal(t, "No token balances with known prices.", renderBalances(nil))

	text := renderBalances([]BalanceEntry{
		{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Amount: 12.5, ValueUSD: 12.48},
	})
	assert.Contains(t, text, "USDC")
	assert.Contains(t, text, "EPjF...Dt1v")
	assert.Contains(t, text, "12.5")
}

func TestRenderPairsCapsAtFive(t *testing.T) {
	pairs := make([]market.Pair, 7)
	for i := range pairs {
		pairs[i] = market.Pair{DexID: "raydium", Name: "Token", Symbol: "TKN", PairAddress: "Pool"}
	}
	text := renderPairs("Mint", pairs)
	assert.Equal(t, 5, strings.Count(text, "DEX: raydium"))
}
