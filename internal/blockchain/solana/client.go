// internal/blockchain/solana/client.go
package solana

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// splTokenAccountSize is the serialized size of an SPL token account: mint at
// [0:32], owner at [32:64], amount as little-endian u64 at [64:72].
const splTokenAccountSize = 165

// Client wraps a Solana RPC endpoint with the chain reads the bot needs.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(rpcURL),
		logger: logger.Named("solana-client"),
	}
}

// RPC exposes the underlying RPC client for components that submit
// transactions through it.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// AccountData fetches the raw binary data of an account.
func (c *Client) AccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("account not found: %s", pubkey)
	}
	return result.Value.Data.GetBinary(), nil
}

// Holding is one SPL token balance owned by the wallet.
type Holding struct {
	Mint      string
	AmountRaw uint64
}

// TokenHoldings enumerates all SPL token accounts owned by the given wallet
// and returns their mint and raw balance. Empty accounts are skipped.
func (c *Client) TokenHoldings(ctx context.Context, owner solana.PublicKey) ([]Holding, error) {
	result, err := c.rpc.GetTokenAccountsByOwner(ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list token accounts: %w", err)
	}

	holdings := make([]Holding, 0, len(result.Value))
	for _, account := range result.Value {
		data := account.Account.Data.GetBinary()
		if len(data) < splTokenAccountSize {
			c.logger.Debug("skipping malformed token account",
				zap.String("account", account.Pubkey.String()),
				zap.Int("data_len", len(data)))
			continue
		}
		amount := binary.LittleEndian.Uint64(data[64:72])
		if amount == 0 {
			continue
		}
		holdings = append(holdings, Holding{
			Mint:      solana.PublicKeyFromBytes(data[0:32]).String(),
			AmountRaw: amount,
		})
	}
	return holdings, nil
}
