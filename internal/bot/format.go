// internal/bot/format.go
package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quantfeed/solswap/internal/market"
	"github.com/quantfeed/solswap/internal/swap"
)

// renderQuote builds the confirmation prompt for a prepared quote. The last
// two lines are the handshake markers; the confirmation decoder reads the
// mints back out of them, so they stay machine-stable while the rest of the
// text is free to change.
func renderQuote(preview *swap.QuotePreview) string {
	q := preview.Quote
	var b strings.Builder
	b.WriteString("Swap details:\n")
	fmt.Fprintf(&b, "Input: %s tokens\n", formatAmount(q.InAmount.Human()))
	fmt.Fprintf(&b, "Output: %s tokens\n", formatAmount(q.OutAmount.Human()))
	fmt.Fprintf(&b, "Price: %.7f\n", preview.Price)
	fmt.Fprintf(&b, "Price impact: %.2f%%\n", q.PriceImpactPct)
	fmt.Fprintf(&b, "Slippage: %.2f%%\n", float64(q.SlippageBps)/100)
	fmt.Fprintf(&b, "Minimum received: %s\n", formatAmount(q.MinOutAmount.Human()))
	b.WriteString("\n")
	b.WriteString(preview.Pending.PromptFooter())
	return b.String()
}

func formatAmount(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.9f", v), "0"), ".")
}

func renderResult(result *swap.Result, err error) string {
	if err == nil {
		return fmt.Sprintf("Success! Transaction: https://solscan.io/tx/%s", result.Signature)
	}
	if swap.KindOf(err) == swap.KindTimedOut && result != nil && result.Signature != "" {
		return fmt.Sprintf("Confirmation timed out - the outcome is unknown, the swap may still land.\n"+
			"Check the transaction yourself: https://solscan.io/tx/%s", result.Signature)
	}
	return errorText(err)
}

// errorText maps a classified pipeline error to a plain-language notice.
// Nothing internal leaks to the chat beyond the failure category.
func errorText(err error) string {
	switch swap.KindOf(err) {
	case swap.KindInvalidRequest:
		return fmt.Sprintf("Invalid request: %v\n%s", userFacingCause(err), swapUsage)
	case swap.KindChainRead:
		return "Could not read token data on-chain. Check the mint address and try again."
	case swap.KindNoRoute:
		return "No routes found for the given token pair."
	case swap.KindProvider:
		return "The swap provider rejected the request. The quote may have gone stale - please request a new one."
	case swap.KindSigning:
		return "Failed to sign the transaction. Please request a new quote."
	case swap.KindBroadcast:
		return "The transaction was rejected by the network."
	case swap.KindTimedOut:
		return "Confirmation timed out - the outcome is unknown."
	case swap.KindInvalidConfirmation:
		return "This confirmation is no longer valid. Please start a new swap."
	default:
		return "Sorry, something went wrong processing your request."
	}
}

func userFacingCause(err error) string {
	var se *swap.Error
	if errors.As(err, &se) {
		return se.Err.Error()
	}
	return err.Error()
}

func renderBalances(entries []BalanceEntry) string {
	if len(entries) == 0 {
		return "No token balances with known prices."
	}
	var b strings.Builder
	b.WriteString("Wallet balances:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s (%s)\nBalance: %s\nValue: $%.4f\n",
			e.Symbol, shortMint(e.Mint), formatAmount(e.Amount), e.ValueUSD)
	}
	return b.String()
}

func renderPairs(mint string, pairs []market.Pair) string {
	if len(pairs) == 0 {
		return "No trading pools found for this token."
	}
	top := pairs
	if len(top) > 5 {
		top = top[:5]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Token details for %s (%s)\n", top[0].Name, top[0].Symbol)
	for _, p := range top {
		fmt.Fprintf(&b, "\nDEX: %s\nPrice: $%.6f\n24h volume: $%.2f\nLiquidity: $%.2f\n"+
			"https://dexscreener.com/solana/%s\n",
			p.DexID, p.PriceUSD, p.Volume24hUSD, p.LiquidityUSD, p.PairAddress)
	}
	return b.String()
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + "..." + mint[len(mint)-4:]
}
