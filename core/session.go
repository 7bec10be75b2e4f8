package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// SessionMaxAge caps how long a signed session may be reused by a client.
const SessionMaxAge = 24 * time.Hour

// AuthorizationRecord is the stored authorization state of a wallet.
type AuthorizationRecord struct {
	Identity    string
	Role        Role
	DisplayName string
	IsActive    bool
}

// Authorization is the outcome of an authorization lookup.
type Authorization struct {
	IsAuthorized bool   `json:"is_authorized"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
}

// Unauthorized is the fail-closed lookup result.
func Unauthorized() Authorization {
	return Authorization{IsAuthorized: false, Role: RoleNone}
}

// AuthorizationFromRecord applies the activity and role rules to a stored record.
func AuthorizationFromRecord(rec AuthorizationRecord) Authorization {
	if !rec.IsActive || rec.Role == RoleNone {
		return Unauthorized()
	}
	return Authorization{IsAuthorized: true, Role: rec.Role, Name: rec.DisplayName}
}

// AuthenticatedIdentity is the request-scoped principal produced by authentication.
type AuthenticatedIdentity struct {
	Identity    string `json:"address"`
	Role        Role   `json:"role"`
	DisplayName string `json:"name"`
}

// Session is a client-held signed challenge, reusable as a bearer credential.
type Session struct {
	Identity        string
	Message         string
	Signature       []byte
	TimestampMillis int64
	Role            Role
	DisplayName     string
}

// Validate checks the session against the client-side reuse rules.
func (s Session) Validate(now time.Time) error {
	if s.Identity == "" || s.Message == "" || len(s.Signature) == 0 {
		return fmt.Errorf("%w: incomplete session", ErrSessionInvalid)
	}
	if now.Sub(time.UnixMilli(s.TimestampMillis)) >= SessionMaxAge {
		return fmt.Errorf("%w: session older than %s", ErrSessionInvalid, SessionMaxAge)
	}
	return nil
}

// StoredSession is the persisted form of a Session.
type StoredSession struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
	Timestamp     int64  `json:"timestamp"`
	Role          string `json:"role"`
	Name          string `json:"name"`
}

// NewStoredSession converts a session into its persisted form.
func NewStoredSession(s Session) StoredSession {
	return StoredSession{
		WalletAddress: s.Identity,
		Signature:     base64.StdEncoding.EncodeToString(s.Signature),
		Message:       s.Message,
		Timestamp:     s.TimestampMillis,
		Role:          s.Role.String(),
		Name:          s.DisplayName,
	}
}

// Session decodes the persisted record. Records written in the comma-separated
// byte-array format fail with ErrLegacySignatureFormat.
func (r StoredSession) Session() (Session, error) {
	if strings.Contains(r.Signature, ",") {
		return Session{}, ErrLegacySignatureFormat
	}
	if r.Signature == "" || r.Message == "" {
		return Session{}, fmt.Errorf("%w: incomplete session", ErrSessionInvalid)
	}
	sig, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return Session{}, fmt.Errorf("%w: signature is not base64", ErrSessionInvalid)
	}

	return Session{
		Identity:        r.WalletAddress,
		Message:         r.Message,
		Signature:       sig,
		TimestampMillis: r.Timestamp,
		Role:            ParseRole(r.Role),
		DisplayName:     r.Name,
	}, nil
}
