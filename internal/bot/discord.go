package bot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"galleryd/internal/composer"
	"galleryd/internal/domain"
)

// Discord implements Platform on top of a discordgo session and feeds its
// gateway events into a Handler.
type Discord struct {
	session *discordgo.Session
	log     logrus.FieldLogger
}

// NewDiscord creates a session for the bot token. The gateway is not opened
// until Start.
func NewDiscord(token string, logger logrus.FieldLogger) (*Discord, error) {
	log := logger.WithField("component", "discord")

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		log.WithError(err).Error("Failed to create Discord session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Discord{session: s, log: log}, nil
}

// Start registers h for gateway events, opens the gateway and blocks until
// ctx is cancelled.
func (d *Discord) Start(ctx context.Context, h *Handler) error {
	d.register(ctx, h)

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	<-ctx.Done()

	d.log.Info("Closing Discord gateway...")
	if err := d.session.Close(); err != nil {
		return fmt.Errorf("failed to close gateway: %w", err)
	}
	return nil
}

func (d *Discord) register(ctx context.Context, h *Handler) {
	d.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		d.log.WithField("user", r.User.Username).Info("Successfully connected to gateway")
	})

	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if isOwnMessage(s, m.Message) {
			return
		}
		d.dispatch("message_create", func() error {
			return h.HandleMessageCreate(ctx, toMessage(m.Message))
		})
	})

	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		if m.Message == nil || isOwnMessage(s, m.Message) {
			return
		}
		ev := toMessageUpdated(m)
		d.dispatch("message_update", func() error {
			return h.HandleMessageUpdate(ctx, ev)
		})
	})

	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageDelete) {
		if m.Message == nil {
			return
		}
		ev := MessageDeleted{ID: m.ID, ChannelID: m.ChannelID}
		d.dispatch("message_delete", func() error {
			return h.HandleMessageDelete(ctx, ev)
		})
	})

	d.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		ev, ok := toControlActivated(i)
		if !ok {
			return
		}
		d.dispatch("interaction_create", func() error {
			return h.HandleControl(ctx, ev)
		})
	})
}

// isOwnMessage reports whether m was posted by the session's own user.
// Updates may arrive without an author; those are not considered own.
func isOwnMessage(s *discordgo.Session, m *discordgo.Message) bool {
	if m == nil || m.Author == nil || s == nil || s.State == nil || s.State.User == nil {
		return false
	}
	return m.Author.ID == s.State.User.ID
}

// toMessageUpdated converts a gateway update. Platform-injected updates,
// such as added link previews, carry no edited timestamp.
func toMessageUpdated(m *discordgo.MessageUpdate) MessageUpdated {
	return MessageUpdated{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Edited:    m.EditedTimestamp != nil,
	}
}

// toControlActivated converts a button interaction. Other interaction types
// are rejected.
func toControlActivated(i *discordgo.InteractionCreate) (ControlActivated, bool) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent {
		return ControlActivated{}, false
	}
	data, ok := i.Data.(discordgo.MessageComponentInteractionData)
	if !ok {
		return ControlActivated{}, false
	}

	ev := ControlActivated{
		Interaction: Interaction{ID: i.ID, Token: i.Token},
		CustomID:    data.CustomID,
		ChannelID:   i.ChannelID,
	}
	if i.Member != nil && i.Member.User != nil {
		ev.UserID = i.Member.User.ID
	} else if i.User != nil {
		ev.UserID = i.User.ID
	}
	return ev, true
}

// dispatch runs one event handler, logging its error and any panic.
func (d *Discord) dispatch(event string, fn func() error) {
	log := d.log.WithField("event", event)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Event handler panicked")
		}
	}()
	if err := fn(); err != nil {
		log.WithError(err).Error("Event handling failed")
	}
}

// SendReply implements Platform.
func (d *Discord) SendReply(ctx context.Context, channelID string, reply composer.OutboundReply) (string, error) {
	data := &discordgo.MessageSend{
		Content: reply.Content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: toButtons(reply.Row)},
		},
		Reference: &discordgo.MessageReference{
			MessageID: reply.OriginID,
			ChannelID: channelID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}
	if a := reply.Attachment; a != nil {
		data.Files = []*discordgo.File{{
			Name:        a.Name,
			ContentType: a.MimeType,
			Reader:      bytes.NewReader(a.Data),
		}}
	}

	msg, err := d.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send reply to %s: %w", reply.OriginID, err)
	}
	return msg.ID, nil
}

// SendPrivateResponse implements Platform.
func (d *Discord) SendPrivateResponse(ctx context.Context, interaction Interaction, text string) error {
	err := d.session.InteractionRespond(
		&discordgo.Interaction{ID: interaction.ID, Token: interaction.Token},
		&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: text,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to respond to interaction: %w", err)
	}
	return nil
}

// FetchMessage implements Platform.
func (d *Discord) FetchMessage(ctx context.Context, channelID, messageID string) (domain.Message, error) {
	m, err := d.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}
	return toMessage(m), nil
}

// DeleteMessage implements Platform.
func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

func toMessage(m *discordgo.Message) domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Embeds:    make([]domain.PreviewEntry, 0, len(m.Embeds)),
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		entry := domain.PreviewEntry{SourceURL: e.URL}
		if e.Image != nil {
			entry.ImageURL = e.Image.URL
		}
		msg.Embeds = append(msg.Embeds, entry)
	}
	return msg
}

var buttonStyles = map[composer.ControlStyle]discordgo.ButtonStyle{
	composer.StylePrimary:   discordgo.PrimaryButton,
	composer.StyleSecondary: discordgo.SecondaryButton,
	composer.StyleLink:      discordgo.LinkButton,
}

func toButtons(row composer.ControlRow) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(row))
	for _, c := range row {
		b := discordgo.Button{
			Label: c.Label,
			Style: buttonStyles[c.Style],
		}
		if c.Style == composer.StyleLink {
			b.URL = c.URL
		} else {
			b.CustomID = c.CustomID
		}
		buttons = append(buttons, b)
	}
	return buttons
}
