package wallet

import (
	"bytes"
	"fmt"
	"os"

	"github.com/layer-3/walletgate/ports"
)

// Load reads a key file of either supported kind: a JSON byte array is an
// ed25519 keypair, anything else a hex secp256k1 key.
func Load(path string) (ports.Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return LoadKeypair(path)
	}
	return LoadEthKey(path)
}
