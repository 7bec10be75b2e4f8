package verifier

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const ethSignatureLength = 65

// Ethereum verifies personal_sign (EIP-191) signatures from wallets identified
// by a hex address.
type Ethereum struct{}

// Verify recovers the signer of message and compares it with identity.
func (Ethereum) Verify(message string, signature []byte, identity string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if !isEthereumAddress(identity) || len(signature) != ethSignatureLength {
		return false
	}

	sig := make([]byte, ethSignatureLength)
	copy(sig, signature)
	// Wallets emit V as 27/28, go-ethereum expects 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return false
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == common.HexToAddress(identity)
}

func isEthereumAddress(identity string) bool {
	return strings.HasPrefix(identity, "0x") && common.IsHexAddress(identity)
}
