package storage

import (
	"context"

	"galleryd/internal/domain"
)

// Repository keeps track of the replies the bot posted for each originating message.
// Entries are not expected to survive a restart.
type Repository interface {
	// RecordReply stores a reply under its originating message.
	RecordReply(ctx context.Context, reply domain.Reply) error

	// RepliesFor returns the replies recorded for a message, oldest first.
	RepliesFor(ctx context.Context, channelID, originID string) ([]domain.Reply, error)

	// Forget removes every reply recorded for a message.
	Forget(ctx context.Context, channelID, originID string) error

	// Close releases the underlying store.
	Close() error
}
