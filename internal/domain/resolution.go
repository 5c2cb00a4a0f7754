package domain

// Resolution is a rendering size requested from the media host.
type Resolution string

// Known resolutions. The value is the URL suffix token.
const (
	ResolutionThumbnail Resolution = "thumb"
	ResolutionSmall     Resolution = "small"
	ResolutionMedium    Resolution = "medium"
	ResolutionLarge     Resolution = "large"
	ResolutionOriginal  Resolution = "orig"

	// ResolutionUnknown is returned by ParseResolution for tokens outside the enumeration.
	ResolutionUnknown Resolution = ""
)

var resolutions = map[string]Resolution{
	"thumb":  ResolutionThumbnail,
	"small":  ResolutionSmall,
	"medium": ResolutionMedium,
	"large":  ResolutionLarge,
	"orig":   ResolutionOriginal,
}

// ParseResolution maps a suffix token to a Resolution.
func ParseResolution(token string) (Resolution, bool) {
	r, ok := resolutions[token]
	if !ok {
		return ResolutionUnknown, false
	}
	return r, true
}

// Token returns the URL suffix token, e.g. "orig".
func (r Resolution) Token() string {
	return string(r)
}

// Valid reports whether r is one of the known resolutions.
func (r Resolution) Valid() bool {
	_, ok := resolutions[string(r)]
	return ok
}
