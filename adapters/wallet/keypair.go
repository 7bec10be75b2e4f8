package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/layer-3/walletgate/adapters/verifier"
)

// Keypair is an ed25519 wallet backed by a local private key.
type Keypair struct {
	priv ed25519.PrivateKey
}

// NewKeypair generates a fresh ed25519 wallet.
func NewKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Keypair{priv: priv}, nil
}

// KeypairFromPrivateKey wraps an existing ed25519 private key.
func KeypairFromPrivateKey(priv ed25519.PrivateKey) (*Keypair, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return &Keypair{priv: priv}, nil
}

// LoadKeypair reads a keypair file holding the 64 key bytes as a JSON array,
// the layout used by Solana CLI wallets.
func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair: %w", err)
	}

	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse keypair: %w", err)
	}
	key := make([]byte, len(raw))
	for i, b := range raw {
		if b < 0 || b > 255 {
			return nil, fmt.Errorf("keypair byte %d out of range", i)
		}
		key[i] = byte(b)
	}
	return KeypairFromPrivateKey(ed25519.PrivateKey(key))
}

// Save writes the keypair file with owner-only permissions.
func (k *Keypair) Save(path string) error {
	raw := make([]int, len(k.priv))
	for i, b := range k.priv {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Identity returns the base58 public key.
func (k *Keypair) Identity() string {
	return verifier.Ed25519Identity(k.priv.Public().(ed25519.PublicKey))
}

// SignMessage signs message with the private key.
func (k *Keypair) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ed25519.Sign(k.priv, message), nil
}
