package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/layer-3/walletgate/core"
)

func TestRemoteAuthorizationLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/wallets/editor":
			_ = json.NewEncoder(w).Encode(core.Authorization{IsAuthorized: true, Role: core.RoleEditor, Name: "Alice"})
		case "/auth/wallets/unknown":
			_ = json.NewEncoder(w).Encode(core.Unauthorized())
		case "/auth/wallets/roleless":
			_, _ = w.Write([]byte(`{"is_authorized":true,"role":"superuser","name":"x"}`))
		case "/auth/wallets/garbage":
			_, _ = w.Write([]byte(`not json`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	lookup := NewRemoteAuthorizationLookup(srv.URL+"/", srv.Client(), nil)
	ctx := context.Background()

	assert.Equal(t, core.Authorization{IsAuthorized: true, Role: core.RoleEditor, Name: "Alice"}, lookup.Lookup(ctx, "editor"))
	assert.Equal(t, core.Unauthorized(), lookup.Lookup(ctx, "unknown"))
	assert.Equal(t, core.Unauthorized(), lookup.Lookup(ctx, "roleless"))
	assert.Equal(t, core.Unauthorized(), lookup.Lookup(ctx, "garbage"))
	assert.Equal(t, core.Unauthorized(), lookup.Lookup(ctx, "broken"))
	assert.Equal(t, core.Unauthorized(), lookup.Lookup(ctx, ""))
}

func TestRemoteAuthorizationLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	lookup := NewRemoteAuthorizationLookup(url, nil, nil)
	assert.Equal(t, core.Unauthorized(), lookup.Lookup(context.Background(), "editor"))
}
