package ports

import (
	"context"

	"github.com/layer-3/walletgate/core"
)

// AuthorizationStore is the slice of the metadata store consulted by authentication.
type AuthorizationStore interface {
	// LookupAuthorization returns the stored record for identity, or core.ErrNotFound.
	LookupAuthorization(ctx context.Context, identity string) (core.AuthorizationRecord, error)

	// SetRequestIdentity establishes identity as the principal for every store
	// operation performed with the returned context.
	SetRequestIdentity(ctx context.Context, identity string) (context.Context, error)
}

// WalletStore manages authorized wallets.
type WalletStore interface {
	ListWallets(ctx context.Context) ([]core.Wallet, error)
	AddWallet(ctx context.Context, in core.WalletInput) (int64, error)
	UpdateWallet(ctx context.Context, address string, upd core.WalletUpdate) (core.Wallet, error)
	DeactivateWallet(ctx context.Context, address string) error
}

// TokenStore manages token metadata overrides.
type TokenStore interface {
	// ListTokens returns one page and whether more rows follow.
	ListTokens(ctx context.Context, q core.TokenQuery) ([]core.TokenMetadata, bool, error)
	GetToken(ctx context.Context, mint string) (core.TokenMetadata, error)
	UpsertToken(ctx context.Context, in core.TokenInput) (core.TokenMetadata, error)
	SoftDeleteToken(ctx context.Context, mint string) error
	RestoreToken(ctx context.Context, mint string) (core.TokenMetadata, error)
}

// MetadataStore is the full backing store.
type MetadataStore interface {
	AuthorizationStore
	WalletStore
	TokenStore
}

// SessionStore persists the single client-side session record.
type SessionStore interface {
	// Load returns the stored record, or core.ErrNotFound when none exists.
	Load(ctx context.Context) (core.StoredSession, error)
	Save(ctx context.Context, s core.StoredSession) error
	Delete(ctx context.Context) error
}
