package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"galleryd/internal/composer"
	"galleryd/internal/customid"
	"galleryd/internal/domain"
	"galleryd/internal/extractor"
	"galleryd/internal/storage"
)

// Private responses to control activations.
const (
	MsgInvalidButton = "This button is no longer valid."
	MsgFetchFailed   = "Could not load the original message. Please try again later."
	MsgNoImages      = "No multi-image content is available for this post anymore."
)

// ErrNoImages is reported when an activated control's post has fewer than two images left.
var ErrNoImages = errors.New("no images for post")

// ReplyComposer builds the replies for an image group.
type ReplyComposer interface {
	Compose(group domain.ImageGroup, originID string) ([]composer.OutboundReply, error)
}

// Handler reacts to chat events.
type Handler struct {
	platform Platform
	composer ReplyComposer
	repo     storage.Repository
	log      logrus.FieldLogger
}

// NewHandler creates a new handler instance.
func NewHandler(platform Platform, c ReplyComposer, repo storage.Repository, logger logrus.FieldLogger) *Handler {
	return &Handler{
		platform: platform,
		composer: c,
		repo:     repo,
		log:      logger.WithField("component", "bot_handler"),
	}
}

// HandleMessageCreate replies to every post in msg that has more than one image.
// Dispatch failures are returned, not retried.
func (h *Handler) HandleMessageCreate(ctx context.Context, msg domain.Message) error {
	if len(msg.Embeds) == 0 {
		return nil
	}
	log := h.log.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
	})

	group := extractor.Extract(msg.Embeds, domain.ResolutionLarge)
	replies, err := h.composer.Compose(group, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to compose replies for message %s: %w", msg.ID, err)
	}
	if len(replies) == 0 {
		log.WithField("posts", len(group)).Debug("No multi-image posts in message")
		return nil
	}

	var errs []error
	for _, reply := range replies {
		replyID, err := h.platform.SendReply(ctx, msg.ChannelID, reply)
		if err != nil {
			log.WithError(err).WithField("post", reply.Post.Key()).Error("Failed to send reply")
			errs = append(errs, fmt.Errorf("failed to reply for %s: %w", reply.Post.Key(), err))
			continue
		}
		log.WithFields(logrus.Fields{
			"post":     reply.Post.Key(),
			"reply_id": replyID,
		}).Info("Sent image controls")

		err = h.repo.RecordReply(ctx, domain.Reply{
			ChannelID: msg.ChannelID,
			OriginID:  msg.ID,
			ReplyID:   replyID,
			Post:      reply.Post.Key(),
			CreatedAt: time.Now(),
		})
		if err != nil {
			log.WithError(err).Warn("Failed to record reply")
		}
	}
	return errors.Join(errs...)
}

// HandleMessageUpdate handles the update the platform emits after it attached
// link previews to a message. User edits are ignored.
func (h *Handler) HandleMessageUpdate(ctx context.Context, ev MessageUpdated) error {
	if ev.Edited {
		return nil
	}

	msg, err := h.platform.FetchMessage(ctx, ev.ChannelID, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch updated message %s: %w", ev.ID, err)
	}
	return h.HandleMessageCreate(ctx, msg)
}

// HandleControl answers a "show all images" or "original size" activation with
// the post's image URLs, re-read from the originating message.
// Every outcome gets a private response; only a failure to respond is returned.
func (h *Handler) HandleControl(ctx context.Context, ev ControlActivated) error {
	log := h.log.WithFields(logrus.Fields{
		"interaction_id": ev.Interaction.ID,
		"channel_id":     ev.ChannelID,
		"custom_id":      ev.CustomID,
	})

	text, err := h.imagesFor(ctx, ev)
	if err != nil {
		log.WithError(err).Warn("Control activation failed")
	}

	if err := h.platform.SendPrivateResponse(ctx, ev.Interaction, text); err != nil {
		log.WithError(err).Error("Failed to send interaction response")
		return fmt.Errorf("failed to respond to interaction %s: %w", ev.Interaction.ID, err)
	}
	return nil
}

// imagesFor returns the response text for an activation. On error the text
// is the user-facing explanation.
func (h *Handler) imagesFor(ctx context.Context, ev ControlActivated) (string, error) {
	id, err := customid.Decode(ev.CustomID)
	if err != nil {
		return MsgInvalidButton, err
	}

	msg, err := h.platform.FetchMessage(ctx, ev.ChannelID, id.MessageID)
	if err != nil {
		return MsgFetchFailed, fmt.Errorf("failed to fetch message %s: %w", id.MessageID, err)
	}

	group := extractor.Extract(msg.Embeds, id.Resolution)
	images := group[id.Post().Key()]
	if len(images) < 2 {
		return MsgNoImages, fmt.Errorf("%w: %s has %d", ErrNoImages, id.Post().Key(), len(images))
	}
	return strings.Join(images, "\n"), nil
}

// HandleMessageDelete removes the replies posted for a deleted message.
func (h *Handler) HandleMessageDelete(ctx context.Context, ev MessageDeleted) error {
	replies, err := h.repo.RepliesFor(ctx, ev.ChannelID, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to look up replies for %s: %w", ev.ID, err)
	}
	if len(replies) == 0 {
		return nil
	}

	var errs []error
	for _, reply := range replies {
		if err := h.platform.DeleteMessage(ctx, reply.ChannelID, reply.ReplyID); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete reply %s: %w", reply.ReplyID, err))
		}
	}
	if err := h.repo.Forget(ctx, ev.ChannelID, ev.ID); err != nil {
		errs = append(errs, err)
	}

	h.log.WithFields(logrus.Fields{
		"message_id": ev.ID,
		"channel_id": ev.ChannelID,
		"replies":    len(replies),
	}).Info("Removed replies of deleted message")
	return errors.Join(errs...)
}
