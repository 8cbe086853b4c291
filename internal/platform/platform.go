// Package platform defines the boundary to the chat platform. The router
// consumes inbound events through Handler and performs outbound calls
// through Client; the wire protocol lives in adapters underneath.
package platform

import (
	"context"
	"time"

	"github.com/joingate/joingate/internal/model"
)

// Client is the outbound surface of the chat platform.
type Client interface {
	// ResolveJoinRequest approves or rejects a pending join request by its
	// handle. reason is shown to the requester on rejection.
	ResolveJoinRequest(ctx context.Context, handle string, approve bool, reason string) error

	SendGroupMessage(ctx context.Context, groupID, text string) error
	SendDirectMessage(ctx context.Context, userID, text string) error

	// MuteUser applies a timed mute. Best-effort: callers are expected to
	// swallow the error.
	MuteUser(ctx context.Context, groupID, userID string, duration time.Duration) error

	// GetProfile looks up a stranger's nickname and level.
	GetProfile(ctx context.Context, userID string) (model.Profile, error)

	// SelfID is the bot's own user identifier, empty until known.
	SelfID() string
}

// Handler receives classified inbound events, one at a time.
type Handler interface {
	HandleJoinRequest(ctx context.Context, req model.JoinRequest)
	HandleLeave(ctx context.Context, ev model.LeaveEvent)
	HandleJoinCompleted(ctx context.Context, ev model.JoinCompletedEvent)
	HandleGroupMessage(ctx context.Context, msg model.GroupMessage)
}
