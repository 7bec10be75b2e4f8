package verifier

import "github.com/layer-3/walletgate/ports"

// Router dispatches verification on the shape of the identity: hex addresses
// go to the Ethereum verifier, everything else to ed25519.
type Router struct {
	ed25519  ports.SignatureVerifier
	ethereum ports.SignatureVerifier
}

// New returns a verifier accepting both ed25519 and Ethereum wallets.
func New() *Router {
	return &Router{
		ed25519:  Ed25519{},
		ethereum: Ethereum{},
	}
}

// Verify implements ports.SignatureVerifier.
func (r *Router) Verify(message string, signature []byte, identity string) bool {
	if isEthereumAddress(identity) {
		return r.ethereum.Verify(message, signature, identity)
	}
	return r.ed25519.Verify(message, signature, identity)
}

// ValidIdentity reports whether identity decodes as a supported public key.
func ValidIdentity(identity string) bool {
	if isEthereumAddress(identity) {
		return true
	}
	_, ok := decodeEd25519Key(identity)
	return ok
}
