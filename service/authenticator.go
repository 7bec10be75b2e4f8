package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// DefaultTimestampWindow bounds the distance between a signed timestamp and
// the server clock, in either direction.
const DefaultTimestampWindow = 30 * time.Minute

const tracerName = "github.com/layer-3/walletgate/service"

// Authenticator handles per-request authentication
type Authenticator struct {
	verifier ports.SignatureVerifier
	lookup   ports.AuthorizationLookup
	store    ports.AuthorizationStore
	eventPub ports.EventPublisher
	logger   watermill.LoggerAdapter
	tracer   trace.Tracer

	now    func() time.Time
	window time.Duration
}

// Option customises an Authenticator
type Option func(*Authenticator)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithTimestampWindow replaces DefaultTimestampWindow
func WithTimestampWindow(window time.Duration) Option {
	return func(a *Authenticator) {
		if window > 0 {
			a.window = window
		}
	}
}

// WithTracer replaces the global tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Authenticator) { a.tracer = tracer }
}

// NewAuthenticator creates a new request authenticator. eventPub may be nil.
func NewAuthenticator(
	verifier ports.SignatureVerifier,
	lookup ports.AuthorizationLookup,
	store ports.AuthorizationStore,
	eventPub ports.EventPublisher,
	logger watermill.LoggerAdapter,
	opts ...Option,
) *Authenticator {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	a := &Authenticator{
		verifier: verifier,
		lookup:   lookup,
		store:    store,
		eventPub: eventPub,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		window:   DefaultTimestampWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate verifies the credentials carried by h. On success the returned
// context carries the request identity and the authenticated principal.
func (a *Authenticator) Authenticate(ctx context.Context, h http.Header) (context.Context, core.AuthenticatedIdentity, error) {
	ctx, span := a.tracer.Start(ctx, "Authenticator.Authenticate")
	defer span.End()

	id, reqCtx, err := a.authenticate(ctx, h)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.publish(ctx, id.Identity, outcomeOf(err), err.Error(), "")
		return ctx, core.AuthenticatedIdentity{}, err
	}

	span.SetAttributes(
		attribute.String("wallet.address", id.Identity),
		attribute.String("wallet.role", id.Role.String()),
	)
	a.publish(ctx, id.Identity, core.OutcomeAuthenticated, "", id.Role.String())
	return reqCtx, id, nil
}

func (a *Authenticator) authenticate(ctx context.Context, h http.Header) (core.AuthenticatedIdentity, context.Context, error) {
	creds, err := core.DecodeHeaders(h)
	if err != nil {
		return core.AuthenticatedIdentity{}, nil, err
	}
	id := core.AuthenticatedIdentity{Identity: creds.Identity}

	if !a.fresh(time.UnixMilli(creds.TimestampMillis)) {
		return id, nil, core.ErrTimestampExpired
	}

	if !a.verifier.Verify(creds.Message, creds.Signature, creds.Identity) {
		return id, nil, core.ErrInvalidSignature
	}
	// The header timestamp must be the one the wallet signed.
	if signed, ok := core.MessageTimestamp(creds.Message); ok && signed != creds.TimestampMillis {
		return id, nil, fmt.Errorf("%w: timestamp does not match signed message", core.ErrInvalidSignature)
	}

	authz := a.lookup.Lookup(ctx, creds.Identity)
	if !authz.IsAuthorized {
		return id, nil, core.ErrNotAuthorized
	}

	reqCtx, err := a.store.SetRequestIdentity(ctx, creds.Identity)
	if err != nil {
		a.logger.Error("Failed to establish request identity", err, watermill.LogFields{"wallet": creds.Identity})
		return id, nil, fmt.Errorf("%w: %v", core.ErrNotAuthorized, err)
	}

	id.Role = authz.Role
	id.DisplayName = authz.Name
	return id, core.WithAuthenticatedIdentity(reqCtx, id), nil
}

// fresh reports whether ts lies strictly inside the window around now.
func (a *Authenticator) fresh(ts time.Time) bool {
	now := a.now()
	return ts.After(now.Add(-a.window)) && ts.Before(now.Add(a.window))
}

func outcomeOf(err error) core.AuthOutcome {
	if errors.Is(err, core.ErrNotAuthorized) || errors.Is(err, core.ErrInsufficientPermissions) {
		return core.OutcomeForbidden
	}
	return core.OutcomeRejected
}

func (a *Authenticator) publish(ctx context.Context, identity string, outcome core.AuthOutcome, reason, role string) {
	if a.eventPub == nil {
		return
	}
	event := core.AuthEvent{
		ID:       uuid.NewString(),
		Identity: identity,
		Outcome:  outcome,
		Reason:   reason,
		Role:     role,
		At:       a.now().UTC(),
	}
	if err := a.eventPub.PublishAuthEvent(ctx, event); err != nil {
		// The request outcome stands regardless of the audit trail.
		a.logger.Error("Failed to publish auth event", err, watermill.LogFields{
			"wallet":  identity,
			"outcome": string(outcome),
		})
	}
}
