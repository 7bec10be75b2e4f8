package verifier

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Ed25519 verifies detached ed25519 signatures from wallets identified by a
// base58-encoded public key.
type Ed25519 struct{}

// Verify reports whether signature is a valid signature of message by identity.
func (Ed25519) Verify(message string, signature []byte, identity string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	pub, valid := decodeEd25519Key(identity)
	if !valid || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, []byte(message), signature)
}

func decodeEd25519Key(identity string) (ed25519.PublicKey, bool) {
	if identity == "" {
		return nil, false
	}
	raw, err := base58.Decode(identity)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, false
	}
	return ed25519.PublicKey(raw), true
}

// Ed25519Identity renders an ed25519 public key as a wallet identity.
func Ed25519Identity(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}
