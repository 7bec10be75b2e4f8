// Package client keeps the signed wallet session of a walletgate user and
// attaches it to outgoing API calls.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// State is the authentication state of a Manager.
type State int

const (
	StateDisconnected State = iota
	StateCheckingStoredSession
	StateAuthorizationKnownUnsigned
	StateSigning
	StateAuthenticated
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateCheckingStoredSession:
		return "checking_stored_session"
	case StateAuthorizationKnownUnsigned:
		return "authorization_known_unsigned"
	case StateSigning:
		return "signing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// ErrSigningInProgress is returned when Authenticate is called while a
// signature request is pending.
var ErrSigningInProgress = errors.New("signature request already in progress")

// Snapshot is a point-in-time copy of the Manager state.
type Snapshot struct {
	State         State
	Identity      string
	Authorization core.Authorization
	Session       *core.Session
	Err           error
}

// WalletChangeDelay is how long WalletChanged waits for wallet events to
// settle before reconnecting.
const WalletChangeDelay = 250 * time.Millisecond

// Manager drives the client side of wallet authentication.
type Manager struct {
	store    ports.SessionStore
	lookup   ports.AuthorizationLookup
	verifier ports.SignatureVerifier
	logger   watermill.LoggerAdapter
	now      func() time.Time
	debounce *Debouncer

	mu      sync.Mutex
	gen     uint64
	state   State
	wallet  ports.Wallet
	authz   core.Authorization
	session *core.Session
	lastErr error
}

// NewManager creates a new Manager. verifier checks each fresh signature
// before it is stored.
func NewManager(
	store ports.SessionStore,
	lookup ports.AuthorizationLookup,
	verifier ports.SignatureVerifier,
	logger watermill.LoggerAdapter,
) *Manager {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Manager{
		store:    store,
		lookup:   lookup,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
		debounce: NewDebouncer(WalletChangeDelay),
		authz:    core.Unauthorized(),
	}
}

// Connect binds wallet to the manager. A stored session of the same wallet
// that is still valid is resumed; anything else is discarded and the
// authorization of the wallet is looked up.
func (m *Manager) Connect(ctx context.Context, wallet ports.Wallet) error {
	if wallet == nil {
		return core.ErrWalletNotConnected
	}
	identity := wallet.Identity()

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.wallet = wallet
	m.state = StateCheckingStoredSession
	m.session = nil
	m.authz = core.Unauthorized()
	m.lastErr = nil
	m.mu.Unlock()

	if session, ok := m.resume(ctx, identity); ok {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen {
			return core.ErrWalletNotConnected
		}
		m.session = &session
		m.authz = core.Authorization{IsAuthorized: true, Role: session.Role, Name: session.DisplayName}
		m.state = StateAuthenticated
		m.logger.Debug("Resumed stored session", watermill.LogFields{"wallet": identity})
		return nil
	}

	authz := m.lookup.Lookup(ctx, identity)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return core.ErrWalletNotConnected
	}
	m.authz = authz
	if authz.IsAuthorized {
		m.state = StateAuthorizationKnownUnsigned
	} else {
		m.state = StateUnauthorized
		m.lastErr = core.ErrNotAuthorized
	}
	return nil
}

// resume loads the stored session and reports whether it may be reused by
// identity. Unusable records are deleted.
func (m *Manager) resume(ctx context.Context, identity string) (core.Session, bool) {
	stored, err := m.store.Load(ctx)
	if errors.Is(err, core.ErrNotFound) {
		return core.Session{}, false
	}
	if err == nil {
		session, decodeErr := stored.Session()
		err = decodeErr
		if err == nil && session.Identity != identity {
			err = fmt.Errorf("%w: stored session belongs to another wallet", core.ErrSessionInvalid)
		}
		if err == nil {
			err = session.Validate(m.now())
		}
		if err == nil {
			return session, true
		}
	}

	m.logger.Info("Discarding stored session", watermill.LogFields{"wallet": identity, "reason": err.Error()})
	if delErr := m.store.Delete(ctx); delErr != nil {
		m.logger.Error("Failed to delete stored session", delErr, nil)
	}
	return core.Session{}, false
}

// Authenticate asks the connected wallet to sign a fresh challenge for action
// and stores the resulting session. The manager lock is not held while the
// wallet signs, so the call may be cancelled through ctx.
func (m *Manager) Authenticate(ctx context.Context, action string) error {
	m.mu.Lock()
	if m.wallet == nil {
		m.mu.Unlock()
		return core.ErrWalletNotConnected
	}
	if m.state == StateSigning {
		m.mu.Unlock()
		return ErrSigningInProgress
	}
	gen := m.gen
	wallet := m.wallet
	m.state = StateSigning
	m.lastErr = nil
	m.mu.Unlock()

	identity := wallet.Identity()
	challenge, err := core.BuildChallenge(action, m.now().UnixMilli())
	if err != nil {
		return m.fail(gen, err)
	}
	message := challenge.Message()

	signature, err := wallet.SignMessage(ctx, []byte(message))
	if err != nil {
		return m.fail(gen, fmt.Errorf("%w: %v", core.ErrSignatureRejected, err))
	}
	if !m.verifier.Verify(message, signature, identity) {
		return m.fail(gen, core.ErrInvalidSignature)
	}

	authz := m.lookup.Lookup(ctx, identity)
	if !authz.IsAuthorized {
		return m.fail(gen, core.ErrNotAuthorized)
	}

	session := core.Session{
		Identity:        identity,
		Message:         message,
		Signature:       signature,
		TimestampMillis: challenge.TimestampMillis,
		Role:            authz.Role,
		DisplayName:     authz.Name,
	}

	// Saving under the lock keeps a concurrent reset from racing the write.
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return core.ErrWalletNotConnected
	}
	if err := m.store.Save(ctx, core.NewStoredSession(session)); err != nil {
		err = fmt.Errorf("save session: %w", err)
		m.state = StateUnauthorized
		m.lastErr = err
		return err
	}
	m.session = &session
	m.authz = authz
	m.state = StateAuthenticated
	m.logger.Info("Wallet authenticated", watermill.LogFields{"wallet": identity, "role": authz.Role.String()})
	return nil
}

func (m *Manager) fail(gen uint64, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return err
	}
	m.state = StateUnauthorized
	m.session = nil
	m.lastErr = err
	return err
}

// Logout ends the session and forgets the wallet.
func (m *Manager) Logout(ctx context.Context) error {
	m.logger.Info("Logging out", nil)
	return m.reset(ctx)
}

// Disconnect handles the wallet going away.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.debounce.Cancel()
	return m.reset(ctx)
}

func (m *Manager) reset(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	m.state = StateDisconnected
	m.wallet = nil
	m.session = nil
	m.authz = core.Unauthorized()
	m.lastErr = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// WalletChanged reacts to wallet adapter events. Bursts of events for the
// same wallet collapse into a single Connect; a nil wallet disconnects at once.
// Switching to another wallet drops the current session before the new wallet
// is connected.
func (m *Manager) WalletChanged(ctx context.Context, wallet ports.Wallet) {
	if wallet == nil {
		if err := m.Disconnect(ctx); err != nil {
			m.logger.Error("Failed to disconnect", err, nil)
		}
		return
	}

	m.mu.Lock()
	current := m.wallet
	active := m.state != StateDisconnected
	m.mu.Unlock()

	if current != nil {
		if current.Identity() == wallet.Identity() {
			if active {
				return
			}
		} else {
			m.logger.Info("Wallet changed", watermill.LogFields{"from": current.Identity(), "to": wallet.Identity()})
			if err := m.reset(ctx); err != nil {
				m.logger.Error("Failed to clear session", err, nil)
			}
		}
	}

	m.debounce.Trigger(ctx, wallet.Identity(), func(ctx context.Context) {
		if err := m.Connect(ctx, wallet); err != nil {
			m.logger.Error("Failed to connect wallet", err, watermill.LogFields{"wallet": wallet.Identity()})
		}
	})
}

// Headers returns the authentication headers of the current session. An
// expired or mismatched session is cleared and an empty header set returned.
func (m *Manager) Headers(ctx context.Context) http.Header {
	m.mu.Lock()
	session := m.session
	wallet := m.wallet
	m.mu.Unlock()

	if session == nil || wallet == nil {
		return http.Header{}
	}

	err := session.Validate(m.now())
	if err == nil && wallet.Identity() != session.Identity {
		err = fmt.Errorf("%w: wallet changed", core.ErrSessionInvalid)
	}
	if err != nil {
		m.logger.Info("Session no longer valid", watermill.LogFields{"reason": err.Error()})
		if resetErr := m.reset(ctx); resetErr != nil {
			m.logger.Error("Failed to clear session", resetErr, nil)
		}
		return http.Header{}
	}

	return core.EncodeHeaders(*session)
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:         m.state,
		Authorization: m.authz,
		Err:           m.lastErr,
	}
	if m.wallet != nil {
		snap.Identity = m.wallet.Identity()
	}
	if m.session != nil {
		s := *m.session
		s.Signature = append([]byte(nil), m.session.Signature...)
		snap.Session = &s
	}
	return snap
}

// HasRole reports whether the current session grants at least role.
func (m *Manager) HasRole(role core.Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.session != nil && m.session.Role.Satisfies(role)
}
