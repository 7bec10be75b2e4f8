package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/layer-3/walletgate/core"
)

func TestAuthErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{core.ErrMissingHeaders, http.StatusUnauthorized, "missing_headers"},
		{fmt.Errorf("%w: bad", core.ErrMalformedHeader), http.StatusUnauthorized, "malformed_header"},
		{core.ErrLegacySignatureFormat, http.StatusUnauthorized, "legacy_signature_format"},
		{core.ErrTimestampExpired, http.StatusUnauthorized, "timestamp_expired"},
		{core.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
		{fmt.Errorf("%w: db down", core.ErrNotAuthorized), http.StatusForbidden, "not_authorized"},
		{core.RequireRole(core.RoleViewer, core.RoleAdmin), http.StatusForbidden, "insufficient_permissions"},
		{errors.New("boom"), http.StatusUnauthorized, "unauthenticated"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := authErrorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestPublicAuthMessageHidesCauses(t *testing.T) {
	err := fmt.Errorf("%w: connection refused", core.ErrNotAuthorized)
	assert.Equal(t, core.ErrNotAuthorized.Error(), publicAuthMessage("not_authorized", err))
}
