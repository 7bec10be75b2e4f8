package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/core"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(core.AuthorizationRecord{Identity: "alice", Role: core.RoleEditor, IsActive: true})
	ctx := context.Background()

	rec, err := s.LookupAuthorization(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, core.RoleEditor, rec.Role)

	s.Put(core.AuthorizationRecord{Identity: "alice", Role: core.RoleAdmin, IsActive: true})
	rec, err = s.LookupAuthorization(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, rec.Role)

	s.Remove("alice")
	_, err = s.LookupAuthorization(ctx, "alice")
	require.ErrorIs(t, err, core.ErrNotFound)

	scoped, err := s.SetRequestIdentity(ctx, "alice")
	require.NoError(t, err)
	identity, ok := core.RequestIdentityFromContext(scoped)
	require.True(t, ok)
	assert.Equal(t, "alice", identity)
}
