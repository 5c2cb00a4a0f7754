package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galleryd/internal/composer"
	"galleryd/internal/domain"
)

func TestToMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "999",
		ChannelID: "10",
		GuildID:   "1",
		Author:    &discordgo.User{ID: "42"},
		Embeds: []*discordgo.MessageEmbed{
			{URL: "https://twitter.com/alice/status/111", Image: &discordgo.MessageEmbedImage{URL: "https://pbs.twimg.com/media/a.jpg"}},
			nil,
			{URL: "https://twitter.com/alice/status/111"},
		},
	}

	msg := toMessage(m)
	assert.Equal(t, "999", msg.ID)
	assert.Equal(t, "10", msg.ChannelID)
	assert.Equal(t, "42", msg.AuthorID)
	assert.Equal(t, []domain.PreviewEntry{
		{SourceURL: "https://twitter.com/alice/status/111", ImageURL: "https://pbs.twimg.com/media/a.jpg"},
		{SourceURL: "https://twitter.com/alice/status/111"},
	}, msg.Embeds)
}

func TestToMessage_NoAuthor(t *testing.T) {
	msg := toMessage(&discordgo.Message{ID: "1", ChannelID: "2"})
	assert.Empty(t, msg.AuthorID)
	assert.Empty(t, msg.Embeds)
}

func TestToButtons(t *testing.T) {
	row := composer.ControlRow{
		{Label: "Show all the images (2)", Style: composer.StylePrimary, CustomID: "alice/111/999/large"},
		{Label: "Original size", Style: composer.StyleSecondary, CustomID: "alice/111/999/orig"},
		{Label: "Open App", Style: composer.StyleLink, URL: "https://twitter.com/alice/status/111", CustomID: "ignored"},
	}

	buttons := toButtons(row)
	require.Len(t, buttons, 3)

	show := buttons[0].(discordgo.Button)
	assert.Equal(t, discordgo.PrimaryButton, show.Style)
	assert.Equal(t, "alice/111/999/large", show.CustomID)

	orig := buttons[1].(discordgo.Button)
	assert.Equal(t, discordgo.SecondaryButton, orig.Style)

	link := buttons[2].(discordgo.Button)
	assert.Equal(t, discordgo.LinkButton, link.Style)
	assert.Equal(t, "https://twitter.com/alice/status/111", link.URL)
	assert.Empty(t, link.CustomID, "link buttons must not carry a custom id")
}

func sessionAs(userID string) *discordgo.Session {
	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: userID}
	return s
}

func TestIsOwnMessage(t *testing.T) {
	s := sessionAs("42")

	assert.True(t, isOwnMessage(s, &discordgo.Message{Author: &discordgo.User{ID: "42"}}))
	assert.False(t, isOwnMessage(s, &discordgo.Message{Author: &discordgo.User{ID: "7"}}))
	assert.False(t, isOwnMessage(s, &discordgo.Message{}), "updates without an author are not own")
	assert.False(t, isOwnMessage(&discordgo.Session{State: discordgo.NewState()}, &discordgo.Message{Author: &discordgo.User{ID: "42"}}),
		"before ready the session has no user")
	assert.False(t, isOwnMessage(s, nil))
}

func TestToMessageUpdated(t *testing.T) {
	edited := time.Now()

	ev := toMessageUpdated(&discordgo.MessageUpdate{Message: &discordgo.Message{ID: "999", ChannelID: "10"}})
	assert.Equal(t, MessageUpdated{ID: "999", ChannelID: "10", Edited: false}, ev)

	ev = toMessageUpdated(&discordgo.MessageUpdate{Message: &discordgo.Message{ID: "999", ChannelID: "10", EditedTimestamp: &edited}})
	assert.True(t, ev.Edited, "a user edit carries an edited timestamp")
}

func TestToControlActivated(t *testing.T) {
	component := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		Token:     "tok",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "10",
		Data:      discordgo.MessageComponentInteractionData{CustomID: "alice/111/999/large"},
		Member:    &discordgo.Member{User: &discordgo.User{ID: "42"}},
	}}

	ev, ok := toControlActivated(component)
	require.True(t, ok)
	assert.Equal(t, ControlActivated{
		Interaction: Interaction{ID: "i1", Token: "tok"},
		CustomID:    "alice/111/999/large",
		ChannelID:   "10",
		UserID:      "42",
	}, ev)

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "x"},
		User: &discordgo.User{ID: "7"},
	}}
	ev, ok = toControlActivated(dm)
	require.True(t, ok)
	assert.Equal(t, "7", ev.UserID)

	command := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "gallery"},
	}}
	_, ok = toControlActivated(command)
	assert.False(t, ok, "slash commands are not controls")

	_, ok = toControlActivated(&discordgo.InteractionCreate{})
	assert.False(t, ok)
}

func TestDispatch(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	d := &Discord{log: logger}

	assert.NotPanics(t, func() {
		d.dispatch("message_create", func() error { panic("boom") })
	})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Event handler panicked", hook.LastEntry().Message)
	assert.Equal(t, "boom", hook.LastEntry().Data["panic"])

	d.dispatch("message_update", func() error { return errors.New("gone") })
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Event handling failed", hook.LastEntry().Message)
	assert.Equal(t, "message_update", hook.LastEntry().Data["event"])

	hook.Reset()
	d.dispatch("message_delete", func() error { return nil })
	assert.Empty(t, hook.AllEntries())
}
