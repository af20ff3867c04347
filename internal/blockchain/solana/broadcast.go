// internal/blockchain/solana/broadcast.go
package solana

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/quantfeed/solswap/internal/swap"
)

// txTransport is the slice of the RPC client the broadcaster uses. Narrowed
// so retry and confirmation behavior is testable with a fake transport.
type txTransport interface {
	SendRawTransactionWithOpts(ctx context.Context, txBytes []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// RetryPolicy bounds transaction resubmission. Only errors IsTransient
// accepts are retried; everything else is terminal on the first attempt.
type RetryPolicy struct {
	MaxRetries  int
	IsTransient func(error) bool
}

// DefaultRetryPolicy retries transport-level failures twice. An explicit RPC
// error is the chain rejecting the transaction and is never retried.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		IsTransient: func(err error) bool {
			var rpcErr *jsonrpc.RPCError
			return !errors.As(err, &rpcErr)
		},
	}
}

// BroadcastConfig tunes submission and confirmation behavior.
type BroadcastConfig struct {
	// SkipPreflight disables local simulation before submission, trading
	// early rejection detection for speed. When set, rejection is discovered
	// only at confirmation time.
	SkipPreflight bool

	// Commitment is the finality level AwaitConfirmation waits for.
	Commitment rpc.CommitmentType

	// ConfirmationTimeout bounds the confirmation wait.
	ConfirmationTimeout time.Duration

	// PollInterval is how often the signature status is checked.
	PollInterval time.Duration

	Retry RetryPolicy
}

// Broadcaster submits signed transactions and waits for on-chain finality.
type Broadcaster struct {
	transport txTransport
	cfg       BroadcastConfig
	logger    *zap.Logger
}

func NewBroadcaster(transport txTransport, cfg BroadcastConfig, logger *zap.Logger) *Broadcaster {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	if cfg.ConfirmationTimeout == 0 {
		cfg.ConfirmationTimeout = 60 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Retry.IsTransient == nil {
		cfg.Retry = DefaultRetryPolicy(cfg.Retry.MaxRetries)
	}
	return &Broadcaster{
		transport: transport,
		cfg:       cfg,
		logger:    logger.Named("broadcaster"),
	}
}

// Submit sends the signed transaction, resubmitting on transient transport
// failure up to the retry bound. On-chain rejection is reported immediately.
func (b *Broadcaster) Submit(ctx context.Context, signedTx []byte) (string, error) {
	maxRetries := uint(b.cfg.Retry.MaxRetries)
	opts := rpc.TransactionOpts{
		SkipPreflight:       b.cfg.SkipPreflight,
		PreflightCommitment: b.cfg.Commitment,
		MaxRetries:          &maxRetries,
	}

	op := func() (solana.Signature, error) {
		sig, err := b.transport.SendRawTransactionWithOpts(ctx, signedTx, opts)
		if err == nil {
			return sig, nil
		}
		if b.cfg.Retry.IsTransient(err) {
			b.logger.Warn("retrying transaction send", zap.Error(err))
			return solana.Signature{}, err
		}
		return solana.Signature{}, backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	sig, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(b.cfg.Retry.MaxRetries+1)),
	)
	if err != nil {
		return "", swap.NewError(swap.KindBroadcast, err)
	}

	b.logger.Info("transaction submitted", zap.String("signature", sig.String()))
	return sig.String(), nil
}

// AwaitConfirmation polls the signature status until the configured
// commitment level is reached, the transaction is rejected, or the bounded
// wait elapses. A timeout is an ambiguous outcome: the transaction may still
// land, so the signature stays valid for independent checking.
func (b *Broadcaster) AwaitConfirmation(ctx context.Context, signature string) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return swap.Errorf(swap.KindBroadcast, "invalid transaction signature %q: %v", signature, err)
	}

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.After(b.cfg.ConfirmationTimeout)

	for {
		select {
		case <-ctx.Done():
			return swap.NewError(swap.KindTimedOut, ctx.Err())
		case <-deadline:
			return swap.Errorf(swap.KindTimedOut, "confirmation not observed within %s", b.cfg.ConfirmationTimeout)
		case <-ticker.C:
			done, err := b.checkConfirmation(ctx, sig)
			if err != nil {
				if swap.KindOf(err) == swap.KindBroadcast {
					return err
				}
				b.logger.Warn("confirmation check failed", zap.Error(err))
				continue
			}
			if done {
				return nil
			}
		}
	}
}

func (b *Broadcaster) checkConfirmation(ctx context.Context, sig solana.Signature) (bool, error) {
	response, err := b.transport.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return false, err
	}
	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return false, nil
	}

	status := response.Value[0]
	if status.Err != nil {
		return false, swap.Errorf(swap.KindBroadcast, "transaction rejected on-chain: %v", status.Err)
	}

	switch b.cfg.Commitment {
	case rpc.CommitmentFinalized:
		return status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
	case rpc.CommitmentProcessed:
		return status.ConfirmationStatus != "", nil
	default:
		return status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
	}
}

// CommitmentFromString maps a config value to an RPC commitment level,
// defaulting to confirmed.
func CommitmentFromString(commitment string) rpc.CommitmentType {
	switch commitment {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}
