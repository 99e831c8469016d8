package domain

import (
	"net/url"
	"strings"
)

// ValidateURL reports whether raw is an http(s) URL. The external engine
// supports far more sites than we could enumerate, so only the scheme is
// checked here.
func ValidateURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// ExtractVideoID pulls the platform video id out of known URL shapes.
// Returns an empty string when the shape is not recognized.
func ExtractVideoID(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := parsed.Hostname()

	if strings.Contains(host, "youtu.be") {
		return strings.TrimPrefix(parsed.Path, "/")
	}
	if strings.Contains(host, "youtube.com") {
		return parsed.Query().Get("v")
	}
	if strings.Contains(host, "vimeo.com") {
		id := strings.TrimPrefix(parsed.Path, "/")
		for _, c := range id {
			if c < '0' || c > '9' {
				return ""
			}
		}
		return id
	}
	return ""
}
