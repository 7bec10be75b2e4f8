package wallet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/layer-3/walletgate/adapters/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypairSignsVerifiably(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	sig, err := kp.SignMessage(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.True(t, verifier.New().Verify("hello", sig, kp.Identity()))
}

func TestKeypairSaveLoad(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, kp.Save(path))

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, kp.Identity(), loaded.Identity())
}

func TestEthKeySignsVerifiably(t *testing.T) {
	key, err := NewEthKey()
	require.NoError(t, err)

	sig, err := key.SignMessage(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.True(t, verifier.New().Verify("hello", sig, key.Identity()))

	path := filepath.Join(t.TempDir(), "eth.key")
	require.NoError(t, key.Save(path))
	loaded, err := LoadEthKey(path)
	require.NoError(t, err)
	assert.Equal(t, key.Identity(), loaded.Identity())
}

func TestSignHonoursCancellation(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = kp.SignMessage(ctx, []byte("hello"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadDetectsKeyKind(t *testing.T) {
	dir := t.TempDir()

	kp, err := NewKeypair()
	require.NoError(t, err)
	kpPath := filepath.Join(dir, "solana.json")
	require.NoError(t, kp.Save(kpPath))

	eth, err := NewEthKey()
	require.NoError(t, err)
	ethPath := filepath.Join(dir, "eth.key")
	require.NoError(t, eth.Save(ethPath))

	loaded, err := Load(kpPath)
	require.NoError(t, err)
	assert.Equal(t, kp.Identity(), loaded.Identity())

	loaded, err = Load(ethPath)
	require.NoError(t, err)
	assert.Equal(t, eth.Identity(), loaded.Identity())

	_, err = Load(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
