package ports

import (
	"context"

	"github.com/layer-3/walletgate/core"
)

// SignatureVerifier checks a detached signature over message against identity.
// Implementations never return an error: anything unexpected is a failed verification.
type SignatureVerifier interface {
	Verify(message string, signature []byte, identity string) bool
}

// AuthorizationLookup resolves the authorization of an identity. It fails closed.
type AuthorizationLookup interface {
	Lookup(ctx context.Context, identity string) core.Authorization
}

// Wallet is a connected key holder able to sign arbitrary messages.
type Wallet interface {
	// Identity returns the public-key string of the wallet.
	Identity() string

	// SignMessage asks the holder to sign message. It may block until the user
	// responds and must return when ctx is done.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}
