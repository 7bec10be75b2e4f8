package core

import "context"

type requestIdentityKey struct{}
type authenticatedIdentityKey struct{}

// WithRequestIdentity scopes identity to ctx. Stores read it to attribute
// reads and writes to the caller.
func WithRequestIdentity(ctx context.Context, identity string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIdentityKey{}, identity)
}

// RequestIdentityFromContext returns the identity established for the request.
func RequestIdentityFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	identity, _ := ctx.Value(requestIdentityKey{}).(string)
	return identity, identity != ""
}

// WithAuthenticatedIdentity stores the authenticated principal in ctx.
func WithAuthenticatedIdentity(ctx context.Context, id AuthenticatedIdentity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authenticatedIdentityKey{}, id)
}

// AuthenticatedIdentityFromContext returns the principal stored by WithAuthenticatedIdentity.
func AuthenticatedIdentityFromContext(ctx context.Context) (AuthenticatedIdentity, bool) {
	if ctx == nil {
		return AuthenticatedIdentity{}, false
	}
	id, ok := ctx.Value(authenticatedIdentityKey{}).(AuthenticatedIdentity)
	return id, ok
}
