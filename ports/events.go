package ports

import (
	"context"

	"github.com/layer-3/walletgate/core"
)

// EventPublisher publishes authentication audit events
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, event core.AuthEvent) error
}
