package domain

import "fmt"

// PreviewEntry is one link-unfurl embed the chat platform attached to a message.
type PreviewEntry struct {
	// SourceURL is the canonical link the preview was generated for.
	SourceURL string `json:"source_url"`

	// ImageURL is the representative image of the preview, empty when absent.
	ImageURL string `json:"image_url,omitempty"`
}

// HasImage reports whether the entry carries an image.
func (e PreviewEntry) HasImage() bool {
	return e.ImageURL != ""
}

// PostRef identifies a social-media status referenced by a preview entry.
type PostRef struct {
	Author string `json:"author"`
	PostID string `json:"post_id"`
}

// Key returns the grouping key "author/postID".
func (p PostRef) Key() string {
	return p.Author + "/" + p.PostID
}

// URL returns the canonical status URL on the given host.
func (p PostRef) URL(host string) string {
	return fmt.Sprintf("https://%s/%s/status/%s", host, p.Author, p.PostID)
}

// ImageGroup maps a post key to its image URLs in order of appearance.
type ImageGroup map[string][]string

// Message is the slice of a chat message the bot cares about.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Embeds    []PreviewEntry
}
