package service

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// StoreAuthorizationLookup resolves authorization straight from the store.
// Every call hits the store; nothing is cached.
type StoreAuthorizationLookup struct {
	store  ports.AuthorizationStore
	logger watermill.LoggerAdapter
}

var _ ports.AuthorizationLookup = (*StoreAuthorizationLookup)(nil)

// NewStoreAuthorizationLookup creates a lookup backed by store
func NewStoreAuthorizationLookup(store ports.AuthorizationStore, logger watermill.LoggerAdapter) *StoreAuthorizationLookup {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &StoreAuthorizationLookup{store: store, logger: logger}
}

// Lookup returns the authorization of identity. Any store failure yields the
// unauthorized result.
func (l *StoreAuthorizationLookup) Lookup(ctx context.Context, identity string) core.Authorization {
	if identity == "" {
		return core.Unauthorized()
	}

	rec, err := l.store.LookupAuthorization(ctx, identity)
	if errors.Is(err, core.ErrNotFound) {
		return core.Unauthorized()
	}
	if err != nil {
		l.logger.Error("Authorization lookup failed", err, watermill.LogFields{"wallet": identity})
		return core.Unauthorized()
	}

	return core.AuthorizationFromRecord(rec)
}
