// internal/wallet/wallet.go
package wallet

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/quantfeed/solswap/internal/swap"
)

// Wallet holds the single process keypair. The key is loaded once at startup
// and read-only afterwards, so concurrent use needs no locking.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewWallet builds a wallet from a base58-encoded private key.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Wallet{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// SignTransactionBytes deserializes a serialized transaction, signs it with
// the wallet key and returns the signed serialization. Bytes that do not
// decode into a transaction surface as a signing error.
func (w *Wallet) SignTransactionBytes(raw []byte) ([]byte, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, swap.Errorf(swap.KindSigning, "failed to deserialize transaction: %v", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		return nil
	})
	if err != nil {
		return nil, swap.Errorf(swap.KindSigning, "failed to sign transaction: %v", err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return nil, swap.Errorf(swap.KindSigning, "failed to serialize signed transaction: %v", err)
	}
	return signed, nil
}

// String returns the wallet's public key.
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
