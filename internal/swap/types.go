// internal/swap/types.go
package swap

import (
	"context"
	"encoding/json"
	"math"
)

// WrappedSolMint is the tradeable wrapped form of the native asset. It is the
// default input side of a swap when the user does not name one.
const WrappedSolMint = "So11111111111111111111111111111111111111112"

// TokenAmount is a quantity in a token's smallest indivisible unit together
// with the scale needed to render a human value.
type TokenAmount struct {
	Raw      uint64
	Decimals uint8
}

// Human renders the amount as raw / 10^decimals.
func (a TokenAmount) Human() float64 {
	return float64(a.Raw) / math.Pow10(int(a.Decimals))
}

// Quote is a priced swap route returned by the aggregator. It is immutable
// and consumed at most once by the transaction build step; the provider may
// reject it as stale at build time.
type Quote struct {
	InputMint      string
	OutputMint     string
	InAmount       TokenAmount
	OutAmount      TokenAmount
	MinOutAmount   TokenAmount
	PriceImpactPct float64
	SlippageBps    int

	// ProviderPayload is the verbatim quote response body, posted back to the
	// aggregator when building the transaction.
	ProviderPayload json.RawMessage
}

// Result reports the terminal outcome of one execution attempt. On a
// confirmation timeout the signature is still set so the caller can check the
// transaction independently.
type Result struct {
	Signature string
	Confirmed bool
}

// DecimalsResolver resolves a mint address to its on-chain decimal precision.
type DecimalsResolver interface {
	Resolve(ctx context.Context, mint string) (uint8, error)
}

// QuoteClient requests a priced quote from the aggregator. Amount is in the
// smallest unit of the input token; slippage is parts-per-ten-thousand.
type QuoteClient interface {
	Quote(ctx context.Context, inputMint, outputMint string, amountRaw uint64, slippageBps int) (*Quote, error)
}

// TransactionBuilder asks the aggregator for a serialized, unsigned
// transaction implementing the quote.
type TransactionBuilder interface {
	Build(ctx context.Context, quote *Quote, userPublicKey string) ([]byte, error)
}

// Signer signs serialized transaction bytes with the process keypair.
type Signer interface {
	SignTransactionBytes(raw []byte) ([]byte, error)
}

// Broadcaster submits a signed transaction and waits for on-chain finality.
// AwaitConfirmation returns nil once the configured commitment level is
// reached, a KindTimedOut error when the bounded wait elapses, and a
// KindBroadcast error on explicit rejection.
type Broadcaster interface {
	Submit(ctx context.Context, signedTx []byte) (string, error)
	AwaitConfirmation(ctx context.Context, signature string) error
}
