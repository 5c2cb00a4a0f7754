package bot

import (
	"context"

	"galleryd/internal/composer"
	"galleryd/internal/domain"
)

// Platform is the chat platform as seen by the handlers.
type Platform interface {
	// SendReply posts reply as a threaded reply in channelID and returns the new message id.
	SendReply(ctx context.Context, channelID string, reply composer.OutboundReply) (string, error)

	// SendPrivateResponse answers an interaction with text only the activating user can see.
	SendPrivateResponse(ctx context.Context, interaction Interaction, text string) error

	// FetchMessage reads the current state of a message.
	FetchMessage(ctx context.Context, channelID, messageID string) (domain.Message, error)

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Interaction identifies a control activation to respond to.
type Interaction struct {
	ID    string
	Token string
}

// MessageUpdated is a message update event.
// Edited is false when the platform itself updated the message, e.g. to add previews.
type MessageUpdated struct {
	ID        string
	ChannelID string
	Edited    bool
}

// MessageDeleted is a message deletion event.
type MessageDeleted struct {
	ID        string
	ChannelID string
}

// ControlActivated is emitted when a user clicks a control carrying a custom id.
type ControlActivated struct {
	Interaction Interaction
	CustomID    string
	ChannelID   string
	UserID      string
}
