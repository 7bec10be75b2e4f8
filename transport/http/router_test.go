package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/adapters/store/sqlite"
	"github.com/layer-3/walletgate/adapters/verifier"
	"github.com/layer-3/walletgate/adapters/wallet"
	"github.com/layer-3/walletgate/config"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/service"
)

const (
	allowedOrigin = "https://cms.example.com"
	testMint      = "So11111111111111111111111111111111111111112"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *sqlite.Store
	admin  *wallet.Keypair
	editor *wallet.Keypair
	viewer *wallet.Keypair
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "walletgate.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ts := &testServer{t: t, store: store}
	ts.admin = ts.addWallet(core.RoleAdmin, "Root")
	ts.editor = ts.addWallet(core.RoleEditor, "Alice")
	ts.viewer = ts.addWallet(core.RoleViewer, "Vic")

	lookup := service.NewStoreAuthorizationLookup(store, nil)
	ts.router = SetupRouter(RouterConfig{
		Authenticator:  service.NewAuthenticator(verifier.New(), lookup, store, nil, nil),
		Handlers:       NewHandlers(store, lookup, config.RPCClientConfig{Network: config.NetworkDevnet}.Resolve(), nil),
		Metrics:        NewMetrics(),
		AllowedOrigins: []string{allowedOrigin},
	})
	return ts
}

func (ts *testServer) addWallet(role core.Role, name string) *wallet.Keypair {
	ts.t.Helper()
	key, err := wallet.NewKeypair()
	require.NoError(ts.t, err)

	ctx, err := ts.store.SetRequestIdentity(context.Background(), "bootstrap")
	require.NoError(ts.t, err)
	_, err = ts.store.AddWallet(ctx, core.WalletInput{Address: key.Identity(), Name: name, Role: role})
	require.NoError(ts.t, err)
	return key
}

func signedHeaders(t *testing.T, key *wallet.Keypair) http.Header {
	t.Helper()
	challenge, err := core.BuildChallenge("api", time.Now().UnixMilli())
	require.NoError(t, err)
	sig, err := key.SignMessage(context.Background(), []byte(challenge.Message()))
	require.NoError(t, err)

	return core.EncodeHeaders(core.Session{
		Identity:        key.Identity(),
		Message:         challenge.Message(),
		Signature:       sig,
		TimestampMillis: challenge.TimestampMillis,
	})
}

func (ts *testServer) do(method, path string, key *wallet.Keypair, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if key != nil {
		for name, values := range signedHeaders(ts.t, key) {
			req.Header[name] = values
		}
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	return body.Code
}

func TestAuthFailures(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_headers", errorCode(t, rec))

	stranger, err := wallet.NewKeypair()
	require.NoError(t, err)
	rec = ts.do(http.MethodGet, "/api/me", stranger, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_authorized", errorCode(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for name, values := range signedHeaders(t, ts.editor) {
		req.Header[name] = values
	}
	req.Header.Set(core.HeaderAuthorization, "Bearer 12,34,56")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "legacy_signature_format", errorCode(t, rec))

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for name, values := range signedHeaders(t, ts.editor) {
		req.Header[name] = values
	}
	req.Header.Set(core.HeaderWalletAddress, ts.viewer.Identity())
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_signature", errorCode(t, rec))
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/me", ts.editor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var id core.AuthenticatedIdentity
	decode(t, rec, &id)
	assert.Equal(t, ts.editor.Identity(), id.Identity)
	assert.Equal(t, core.RoleEditor, id.Role)
	assert.Equal(t, "Alice", id.DisplayName)
}

func TestWalletAuthorizationProbe(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/auth/wallets/"+ts.viewer.Identity(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var authz core.Authorization
	decode(t, rec, &authz)
	assert.Equal(t, core.Authorization{IsAuthorized: true, Role: core.RoleViewer, Name: "Vic"}, authz)

	rec = ts.do(http.MethodGet, "/auth/wallets/nobody", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &authz)
	assert.Equal(t, core.Unauthorized(), authz)
}

func TestNetwork(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/network", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "devnet", body["network"])
	assert.Equal(t, "https://api.devnet.solana.com", body["rpc_url"])
	assert.Equal(t, "Devnet", body["display_name"])
}

func TestWalletManagement(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/users", ts.editor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_permissions", errorCode(t, rec))

	rec = ts.do(http.MethodGet, "/api/users", ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wallets []core.Wallet
	decode(t, rec, &wallets)
	assert.Len(t, wallets, 3)

	newcomer, err := wallet.NewKeypair()
	require.NoError(t, err)

	rec = ts.do(http.MethodPost, "/api/users", ts.admin, gin.H{"wallet_address": newcomer.Identity(), "name": "Nina"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodPost, "/api/users", ts.admin, gin.H{"wallet_address": newcomer.Identity()})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/users", ts.admin, gin.H{"wallet_address": "not-a-wallet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/users", ts.admin, gin.H{"wallet_address": newcomer.Identity(), "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/me", newcomer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var id core.AuthenticatedIdentity
	decode(t, rec, &id)
	assert.Equal(t, core.RoleEditor, id.Role)

	rec = ts.do(http.MethodPut, "/api/users/"+newcomer.Identity(), ts.admin, gin.H{"role": "viewer"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated core.Wallet
	decode(t, rec, &updated)
	assert.Equal(t, core.RoleViewer, updated.Role)

	rec = ts.do(http.MethodPut, "/api/users/"+newcomer.Identity(), ts.admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/users/"+ts.admin.Identity(), ts.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/users/Missing1111111111111111111111111111111111", ts.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/users/"+newcomer.Identity(), ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/me", newcomer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_authorized", errorCode(t, rec))

	entries, err := ts.store.AuditLog(context.Background(), "authorized_wallets")
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, "UPDATE", last.Operation)
	assert.Equal(t, ts.admin.Identity(), last.WalletAddress)
}

func TestTokenLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/tokens", ts.viewer, gin.H{"mint": testMint})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_permissions", errorCode(t, rec))

	rec = ts.do(http.MethodPost, "/api/tokens", ts.editor, gin.H{"mint": "bad mint"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/tokens", ts.editor, gin.H{"mint": testMint, "name": "Wrapped SOL"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var token core.TokenMetadata
	decode(t, rec, &token)
	assert.Equal(t, ts.editor.Identity(), token.CreatedBy)

	rec = ts.do(http.MethodPut, "/api/tokens/"+testMint, ts.editor, gin.H{"name": "wSOL"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &token)
	assert.Equal(t, "wSOL", token.Name)

	rec = ts.do(http.MethodGet, "/api/tokens/"+testMint, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/tokens?limit=500", ts.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data       []core.TokenMetadata `json:"data"`
		Pagination struct {
			Limit   int  `json:"limit"`
			Offset  int  `json:"offset"`
			HasMore bool `json:"hasMore"`
		} `json:"pagination"`
	}
	decode(t, rec, &page)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, core.MaxTokenPageSize, page.Pagination.Limit)
	assert.False(t, page.Pagination.HasMore)

	rec = ts.do(http.MethodDelete, "/api/tokens/"+testMint, ts.editor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/tokens/"+testMint, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/tokens/"+testMint, ts.editor, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/tokens/"+testMint+"/restore", ts.editor, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/api/tokens/"+testMint+"/restore", ts.editor, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tokens", nil)
	req.Header.Set("Origin", allowedOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	for _, name := range core.AuthHeaderNames {
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), name)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/tokens", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(http.MethodGet, "/api/me", nil, nil)
	ts.do(http.MethodGet, "/api/me", ts.viewer, nil)

	rec := ts.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `walletgate_auth_results_total{code="missing_headers"} 1`), body)
	assert.True(t, strings.Contains(body, `walletgate_auth_results_total{code="ok"} 1`), body)
	assert.Contains(t, body, "walletgate_http_requests_total")
}
