package domain

import "time"

// Reply records a message the bot posted in reply to an originating message.
type Reply struct {
	// ChannelID is the channel both messages live in.
	ChannelID string `json:"channel_id"`

	// OriginID is the message the reply was threaded to.
	OriginID string `json:"origin_id"`

	// ReplyID is the id of the bot's own message.
	ReplyID string `json:"reply_id"`

	// Post is the post key ("author/postID") the reply was composed for.
	Post string `json:"post"`

	CreatedAt time.Time `json:"created_at"`
}
