package extractor

import (
	"regexp"
	"strings"

	"galleryd/internal/domain"
)

// statusURLPattern matches a status link and captures the author handle and post id.
var statusURLPattern = regexp.MustCompile(`https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/([^/\s?#]+)/status/([0-9]+)`)

// ParsePost extracts the post reference from a status URL.
// The second return value is the matched URL prefix.
func ParsePost(sourceURL string) (domain.PostRef, string, bool) {
	m := statusURLPattern.FindStringSubmatch(sourceURL)
	if m == nil {
		return domain.PostRef{}, "", false
	}
	return domain.PostRef{Author: m[1], PostID: m[2]}, m[0], true
}

// Extract groups the image URLs of the preview entries by the post they were
// unfurled from, in order of appearance. Links to the same post through
// different schemes or hosts share a key. Each image URL is rewritten to
// request the given resolution. A post whose entries carry no image maps to
// an empty slice.
func Extract(entries []domain.PreviewEntry, resolution domain.Resolution) domain.ImageGroup {
	if !resolution.Valid() {
		resolution = domain.ResolutionLarge
	}

	group := make(domain.ImageGroup)
	for _, e := range entries {
		post, prefix, ok := ParsePost(e.SourceURL)
		if !ok {
			continue
		}
		key := post.Key()
		if _, seen := group[key]; !seen {
			group[key] = []string{}
		}
		if e.HasImage() && belongsTo(e.SourceURL, prefix) {
			group[key] = append(group[key], WithResolution(e.ImageURL, resolution))
		}
	}
	return group
}

// belongsTo reports whether sourceURL points at the status identified by prefix.
// The post id must not continue past the prefix, so ".../status/12" does not
// claim ".../status/123".
func belongsTo(sourceURL, prefix string) bool {
	if !strings.HasPrefix(sourceURL, prefix) {
		return false
	}
	rest := sourceURL[len(prefix):]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

// WithResolution replaces the trailing ":<token>" size suffix of an image URL,
// appending one if none is present.
func WithResolution(imageURL string, resolution domain.Resolution) string {
	base := imageURL
	if i := strings.LastIndexByte(imageURL, ':'); i >= 0 && !strings.ContainsRune(imageURL[i:], '/') {
		base = imageURL[:i]
	}
	return base + ":" + resolution.Token()
}
