// Package customid encodes button callback state into the short custom id
// string the chat platform stores on an interactive control.
//
// Format: author/postID/messageID/resolution
package customid

import (
	"errors"
	"strings"

	"github.com/samber/oops"

	"galleryd/internal/domain"
)

const (
	// Separator delimits the fields of an encoded id.
	Separator = "/"

	// MaxLength is the platform's ceiling for a control custom id.
	MaxLength = 100

	fieldCount = 4
)

// ErrMalformedIdentifier is returned when a custom id cannot be decoded.
var ErrMalformedIdentifier = errors.New("malformed button identifier")

// ErrInvalidField is returned by Encode when a field cannot be represented.
var ErrInvalidField = errors.New("invalid button identifier field")

// Validate checks that every field of id is non-empty, free of the separator,
// and that the resolution is known.
func Validate(id domain.ButtonID) error {
	fields := []struct{ name, value string }{
		{"author", id.Author},
		{"post_id", id.PostID},
		{"message_id", id.MessageID},
	}
	for _, f := range fields {
		if f.value == "" || strings.Contains(f.value, Separator) {
			return oops.In("customid").With("field", f.name, "value", f.value).Wrap(ErrInvalidField)
		}
	}
	if !id.Resolution.Valid() {
		return oops.In("customid").With("field", "resolution", "value", string(id.Resolution)).Wrap(ErrInvalidField)
	}
	return nil
}

// Encode serializes id. It fails if a field is invalid or the result would
// exceed MaxLength.
func Encode(id domain.ButtonID) (string, error) {
	if err := Validate(id); err != nil {
		return "", err
	}
	s := strings.Join([]string{id.Author, id.PostID, id.MessageID, id.Resolution.Token()}, Separator)
	if len(s) > MaxLength {
		return "", oops.In("customid").With("length", len(s), "max", MaxLength).Wrapf(ErrInvalidField, "encoded id too long")
	}
	return s, nil
}

// Decode parses a custom id produced by Encode.
func Decode(s string) (domain.ButtonID, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != fieldCount {
		return domain.ButtonID{}, oops.In("customid").With("custom_id", s, "fields", len(parts)).Wrap(ErrMalformedIdentifier)
	}
	for _, p := range parts {
		if p == "" {
			return domain.ButtonID{}, oops.In("customid").With("custom_id", s).Wrapf(ErrMalformedIdentifier, "empty field")
		}
	}
	res, ok := domain.ParseResolution(parts[3])
	if !ok {
		return domain.ButtonID{}, oops.In("customid").With("custom_id", s, "resolution", parts[3]).Wrapf(ErrMalformedIdentifier, "unknown resolution")
	}
	return domain.ButtonID{
		Author:     parts[0],
		PostID:     parts[1],
		MessageID:  parts[2],
		Resolution: res,
	}, nil
}
