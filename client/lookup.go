package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// RemoteAuthorizationLookup queries the public authorization probe of a
// walletgate server.
type RemoteAuthorizationLookup struct {
	baseURL string
	client  *http.Client
	logger  watermill.LoggerAdapter
}

var _ ports.AuthorizationLookup = (*RemoteAuthorizationLookup)(nil)

// NewRemoteAuthorizationLookup creates a new lookup against the server at baseURL
func NewRemoteAuthorizationLookup(baseURL string, client *http.Client, logger watermill.LoggerAdapter) *RemoteAuthorizationLookup {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &RemoteAuthorizationLookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Lookup fails closed: transport errors, non-200 answers and undecodable
// bodies all yield the unauthorized result.
func (l *RemoteAuthorizationLookup) Lookup(ctx context.Context, identity string) core.Authorization {
	if identity == "" {
		return core.Unauthorized()
	}

	authz, err := l.fetch(ctx, identity)
	if err != nil {
		l.logger.Error("Remote authorization lookup failed", err, watermill.LogFields{"wallet": identity})
		return core.Unauthorized()
	}
	if !authz.IsAuthorized || authz.Role == core.RoleNone {
		return core.Unauthorized()
	}
	return authz
}

func (l *RemoteAuthorizationLookup) fetch(ctx context.Context, identity string) (core.Authorization, error) {
	endpoint := l.baseURL + "/auth/wallets/" + url.PathEscape(identity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.Authorization{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return core.Authorization{}, fmt.Errorf("request authorization: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Authorization{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var authz core.Authorization
	if err := json.NewDecoder(resp.Body).Decode(&authz); err != nil {
		return core.Authorization{}, fmt.Errorf("decode authorization: %w", err)
	}
	return authz, nil
}
