package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// EthKey is an Ethereum wallet signing with personal_sign semantics.
type EthKey struct {
	key *ecdsa.PrivateKey
}

// NewEthKey generates a fresh secp256k1 wallet.
func NewEthKey() (*EthKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &EthKey{key: key}, nil
}

// LoadEthKey reads a hex-encoded private key file.
func LoadEthKey(path string) (*EthKey, error) {
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load key: %w", err)
	}
	return &EthKey{key: key}, nil
}

// Save writes the hex-encoded private key.
func (e *EthKey) Save(path string) error {
	return crypto.SaveECDSA(path, e.key)
}

// Identity returns the checksummed address.
func (e *EthKey) Identity() string {
	return crypto.PubkeyToAddress(e.key.PublicKey).Hex()
}

// SignMessage signs the EIP-191 text hash of message, with V in {27, 28}.
func (e *EthKey) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(accounts.TextHash(message), e.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}
