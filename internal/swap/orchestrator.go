// internal/swap/orchestrator.go
package swap

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Request is a user-entered swap request, still in human units. Amount and
// slippage arrive as the raw words the user typed; validation happens here,
// before any network call.
type Request struct {
	OutputMint   string
	AmountText   string
	SlippageText string // optional, percent
	InputMint    string // optional, defaults to wrapped SOL
}

// QuotePreview is a quoted swap ready to show to the user, paired with the
// handshake state that a later confirmation will decode.
type QuotePreview struct {
	Quote   *Quote
	Price   float64 // output units per input unit, in base units
	Pending PendingConfirmation
}

// OrchestratorConfig wires the pipeline collaborators.
type OrchestratorConfig struct {
	Decimals    DecimalsResolver
	Quotes      QuoteClient
	Builder     TransactionBuilder
	Signer      Signer
	Broadcaster Broadcaster

	// SignerPublicKey is the base58 public key of the process keypair, passed
	// to the aggregator when building the transaction.
	SignerPublicKey string

	// DefaultSlippagePercent applies when the request leaves slippage blank.
	DefaultSlippagePercent float64

	// NativeMint is the default input token. Empty means wrapped SOL.
	NativeMint string

	Logger *zap.Logger
}

// Orchestrator composes the swap pipeline: quote, confirmation handshake,
// then build, sign, broadcast and confirm. Each request owns its pipeline
// data exclusively; concurrent requests need no coordination beyond the
// read-only signing key.
type Orchestrator struct {
	decimals        DecimalsResolver
	quotes          QuoteClient
	builder         TransactionBuilder
	signer          Signer
	caster          Broadcaster
	signerPublicKey string
	defaultSlippage float64
	nativeMint      string
	logger          *zap.Logger
}

func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	nativeMint := cfg.NativeMint
	if nativeMint == "" {
		nativeMint = WrappedSolMint
	}
	defaultSlippage := cfg.DefaultSlippagePercent
	if defaultSlippage == 0 {
		defaultSlippage = 10
	}
	return &Orchestrator{
		decimals:        cfg.Decimals,
		quotes:          cfg.Quotes,
		builder:         cfg.Builder,
		signer:          cfg.Signer,
		caster:          cfg.Broadcaster,
		signerPublicKey: cfg.SignerPublicKey,
		defaultSlippage: defaultSlippage,
		nativeMint:      nativeMint,
		logger:          cfg.Logger.Named("orchestrator"),
	}
}

// PrepareQuote validates the request, resolves both tokens' precision,
// converts units and fetches a priced quote. Invalid input is rejected
// synchronously with KindInvalidRequest before anything touches the network.
func (o *Orchestrator) PrepareQuote(ctx context.Context, req Request) (*QuotePreview, error) {
	outputMint := strings.TrimSpace(req.OutputMint)
	if outputMint == "" {
		return nil, Errorf(KindInvalidRequest, "output token is required")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(req.AmountText), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, Errorf(KindInvalidRequest, "amount %q is not a positive number", req.AmountText)
	}

	slippagePercent := o.defaultSlippage
	if s := strings.TrimSpace(req.SlippageText); s != "" {
		slippagePercent, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, Errorf(KindInvalidRequest, "slippage %q is not a number", req.SlippageText)
		}
	}
	slippageBps, err := PercentToBps(slippagePercent)
	if err != nil {
		return nil, err
	}

	inputMint := strings.TrimSpace(req.InputMint)
	if inputMint == "" {
		inputMint = o.nativeMint
	}

	inDecimals, err := o.decimals.Resolve(ctx, inputMint)
	if err != nil {
		return nil, err
	}
	outDecimals, err := o.decimals.Resolve(ctx, outputMint)
	if err != nil {
		return nil, err
	}

	amountRaw := ToRaw(amount, inDecimals)

	quote, err := o.quotes.Quote(ctx, inputMint, outputMint, amountRaw, slippageBps)
	if err != nil {
		return nil, err
	}
	quote.InAmount.Decimals = inDecimals
	quote.OutAmount.Decimals = outDecimals
	quote.MinOutAmount.Decimals = outDecimals

	preview := &QuotePreview{
		Quote: quote,
		Price: float64(quote.OutAmount.Raw) / float64(quote.InAmount.Raw),
		Pending: PendingConfirmation{
			AmountRaw:   amountRaw,
			SlippageBps: slippageBps,
			InputMint:   inputMint,
			OutputMint:  outputMint,
		},
	}

	o.logger.Info("quote prepared",
		zap.String("input_mint", inputMint),
		zap.String("output_mint", outputMint),
		zap.Uint64("amount_raw", amountRaw),
		zap.Int("slippage_bps", slippageBps),
		zap.Float64("price_impact_pct", quote.PriceImpactPct))

	return preview, nil
}

// ExecuteConfirmed runs the execution half of the pipeline from decoded
// handshake state. The build uses exactly the confirmed amount, slippage and
// token pair; a quote gone stale since display is the provider's to reject.
// Nothing is retried across the pipeline: any failure is terminal for this
// attempt and the user starts over with a new request.
func (o *Orchestrator) ExecuteConfirmed(ctx context.Context, pending PendingConfirmation) (*Result, error) {
	logger := o.logger.With(
		zap.String("input_mint", pending.InputMint),
		zap.String("output_mint", pending.OutputMint),
		zap.Uint64("amount_raw", pending.AmountRaw),
		zap.Int("slippage_bps", pending.SlippageBps))

	// The handshake pins parameters, not the route payload, so the route is
	// re-derived from the exact confirmed parameters before building.
	quote, err := o.quotes.Quote(ctx, pending.InputMint, pending.OutputMint, pending.AmountRaw, pending.SlippageBps)
	if err != nil {
		logger.Warn("route re-derivation failed", zap.Error(err))
		return nil, err
	}

	unsigned, err := o.builder.Build(ctx, quote, o.signerPublicKey)
	if err != nil {
		logger.Warn("transaction build failed", zap.Error(err))
		return nil, err
	}

	signed, err := o.signer.SignTransactionBytes(unsigned)
	if err != nil {
		logger.Error("transaction signing failed", zap.Error(err))
		return nil, err
	}

	signature, err := o.caster.Submit(ctx, signed)
	if err != nil {
		logger.Warn("transaction submission failed", zap.Error(err))
		return nil, err
	}

	if err := o.caster.AwaitConfirmation(ctx, signature); err != nil {
		logger.Warn("transaction confirmation failed",
			zap.String("signature", signature),
			zap.Error(err))
		// The transaction may still land after a timeout; keep the reference
		// so the caller can check it independently.
		return &Result{Signature: signature}, err
	}

	logger.Info("swap confirmed", zap.String("signature", signature))
	return &Result{Signature: signature, Confirmed: true}, nil
}
