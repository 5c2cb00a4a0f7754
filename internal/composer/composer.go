package composer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"galleryd/internal/customid"
	"galleryd/internal/domain"
	"galleryd/internal/extractor"
)

// ControlStyle is the visual style of a control.
type ControlStyle int

const (
	StylePrimary ControlStyle = iota
	StyleSecondary
	StyleLink
)

// Control is a clickable element attached to a reply.
// Link controls carry a URL and no custom id.
type Control struct {
	Label    string
	Style    ControlStyle
	CustomID string
	URL      string
}

// ControlRow is a horizontal group of controls.
type ControlRow []Control

// Attachment is a file uploaded with a reply.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// OutboundReply is one threaded reply to the originating message.
// Exactly one of Content and Attachment is set.
type OutboundReply struct {
	OriginID   string
	Post       domain.PostRef
	Content    string
	Attachment *Attachment
	Row        ControlRow
}

// Composer builds the replies for an extracted image group.
type Composer struct {
	placeholder Attachment
	linkHost    string
}

// New creates a Composer. The placeholder is shared by every reply and must
// not be modified afterwards.
func New(placeholder Attachment, linkHost string) *Composer {
	if linkHost == "" {
		linkHost = "twitter.com"
	}
	return &Composer{placeholder: placeholder, linkHost: linkHost}
}

// Compose returns one reply per post with more than one image, ordered by post key.
// When several posts qualify each reply shows its first image as a thumbnail;
// a lone post gets the placeholder asset instead.
func (c *Composer) Compose(group domain.ImageGroup, originID string) ([]OutboundReply, error) {
	qualifying := lo.PickBy(group, func(_ string, images []string) bool {
		return len(images) > 1
	})
	keys := lo.Keys(qualifying)
	sort.Strings(keys)

	replies := make([]OutboundReply, 0, len(keys))
	for _, key := range keys {
		images := qualifying[key]
		post, ok := parseKey(key)
		if !ok {
			return nil, fmt.Errorf("invalid post key %q", key)
		}

		row, err := c.controlRow(post, originID, len(images))
		if err != nil {
			return nil, fmt.Errorf("failed to build controls for %s: %w", key, err)
		}

		reply := OutboundReply{OriginID: originID, Post: post, Row: row}
		if len(keys) > 1 {
			reply.Content = extractor.WithResolution(images[0], domain.ResolutionThumbnail)
		} else {
			att := c.placeholder
			reply.Attachment = &att
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

func (c *Composer) controlRow(post domain.PostRef, originID string, count int) (ControlRow, error) {
	showID, err := customid.Encode(domain.ButtonID{
		Author:     post.Author,
		PostID:     post.PostID,
		MessageID:  originID,
		Resolution: domain.ResolutionLarge,
	})
	if err != nil {
		return nil, err
	}
	origID, err := customid.Encode(domain.ButtonID{
		Author:     post.Author,
		PostID:     post.PostID,
		MessageID:  originID,
		Resolution: domain.ResolutionOriginal,
	})
	if err != nil {
		return nil, err
	}

	return ControlRow{
		{Label: fmt.Sprintf("Show all the images (%d)", count), Style: StylePrimary, CustomID: showID},
		{Label: "Original size", Style: StyleSecondary, CustomID: origID},
		{Label: "Open App", Style: StyleLink, URL: post.URL(c.linkHost)},
	}, nil
}

func parseKey(key string) (domain.PostRef, bool) {
	author, postID, ok := strings.Cut(key, "/")
	if !ok || author == "" || postID == "" {
		return domain.PostRef{}, false
	}
	return domain.PostRef{Author: author, PostID: postID}, true
}
