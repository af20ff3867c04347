// internal/blockchain/solana/decimals.go
package solana

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/quantfeed/solswap/internal/swap"
)

// mintDecimalsOffset is where the decimals byte sits in the SPL mint layout.
const mintDecimalsOffset = 44

// accountReader is the chain-read capability the resolver depends on.
type accountReader interface {
	AccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
}

// DecimalsResolver resolves a mint to its decimal precision with a
// per-process cache. Decimals are immutable for a mint's lifetime, so the
// first observed value is authoritative until the process exits.
type DecimalsResolver struct {
	reader accountReader
	cache  sync.Map // mint string -> uint8
	logger *zap.Logger
}

func NewDecimalsResolver(reader accountReader, logger *zap.Logger) *DecimalsResolver {
	return &DecimalsResolver{
		reader: reader,
		logger: logger.Named("decimals"),
	}
}

// Resolve returns the decimal precision of the given mint, failing with a
// chain-read error when the account cannot be read or is not a fungible
// token mint.
func (r *DecimalsResolver) Resolve(ctx context.Context, mint string) (uint8, error) {
	if cached, ok := r.cache.Load(mint); ok {
		return cached.(uint8), nil
	}

	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, swap.Errorf(swap.KindChainRead, "invalid mint address %q: %v", mint, err)
	}

	data, err := r.reader.AccountData(ctx, pubkey)
	if err != nil {
		return 0, swap.NewError(swap.KindChainRead, err)
	}
	if len(data) <= mintDecimalsOffset {
		return 0, swap.Errorf(swap.KindChainRead, "account %s is not a token mint: data length %d", mint, len(data))
	}

	decimals := data[mintDecimalsOffset]

	// LoadOrStore keeps the first observed value authoritative even when two
	// requests race on the same mint.
	actual, _ := r.cache.LoadOrStore(mint, decimals)
	r.logger.Debug("resolved mint decimals",
		zap.String("mint", mint),
		zap.Uint8("decimals", actual.(uint8)))
	return actual.(uint8), nil
}
