package downloader

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackFilename = "download"

// resolveFilename picks the output name for a download: the explicit name if
// given, otherwise the last segment of the original URL path with an
// extension derived from contentType when the segment has none.
func resolveFilename(explicit, originalURL, contentType string) string {
	if explicit != "" {
		return explicit
	}
	name := urlBasename(originalURL)
	if path.Ext(name) == "" {
		name += extensionFor(contentType)
	}
	return name
}

func urlBasename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fallbackFilename
	}
	p := parsed.Path
	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return fallbackFilename
	}
	return name
}

// extensionFor maps a Content-Type header value to a file extension
// including the leading dot, or "" when mimetype knows none. The host's
// mime.types table is not consulted so names do not vary between machines.
func extensionFor(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ""
}
