package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValidate(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	valid := Session{
		Identity:        "wallet",
		Message:         "msg",
		Signature:       []byte{1, 2, 3},
		TimestampMillis: now.Add(-time.Hour).UnixMilli(),
	}
	require.NoError(t, valid.Validate(now))

	expired := valid
	expired.TimestampMillis = now.Add(-SessionMaxAge).UnixMilli()
	assert.ErrorIs(t, expired.Validate(now), ErrSessionInvalid)

	almost := valid
	almost.TimestampMillis = now.Add(-SessionMaxAge + time.Millisecond).UnixMilli()
	assert.NoError(t, almost.Validate(now))

	noSig := valid
	noSig.Signature = nil
	assert.ErrorIs(t, noSig.Validate(now), ErrSessionInvalid)

	noMsg := valid
	noMsg.Message = ""
	assert.ErrorIs(t, noMsg.Validate(now), ErrSessionInvalid)
}

func TestStoredSessionRoundTrip(t *testing.T) {
	s := Session{
		Identity:        "wallet",
		Message:         "msg",
		Signature:       []byte{0xde, 0xad, 0xbe, 0xef},
		TimestampMillis: 123,
		Role:            RoleEditor,
		DisplayName:     "Alice",
	}

	rec := NewStoredSession(s)
	assert.Equal(t, "3q2+7w==", rec.Signature)
	assert.Equal(t, "editor", rec.Role)

	back, err := rec.Session()
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestStoredSessionLegacyFormat(t *testing.T) {
	rec := StoredSession{WalletAddress: "wallet", Signature: "12,34,56", Message: "msg", Timestamp: 1}
	_, err := rec.Session()
	assert.ErrorIs(t, err, ErrLegacySignatureFormat)

	rec.Signature = "not base64!"
	_, err = rec.Session()
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthorizationFromRecord(t *testing.T) {
	active := AuthorizationRecord{Identity: "w", Role: RoleEditor, DisplayName: "Alice", IsActive: true}
	assert.Equal(t, Authorization{IsAuthorized: true, Role: RoleEditor, Name: "Alice"}, AuthorizationFromRecord(active))

	inactive := active
	inactive.IsActive = false
	assert.Equal(t, Unauthorized(), AuthorizationFromRecord(inactive))

	noRole := active
	noRole.Role = RoleNone
	assert.False(t, AuthorizationFromRecord(noRole).IsAuthorized)
}
