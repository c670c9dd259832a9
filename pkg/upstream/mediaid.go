package upstream

import (
	"net/url"
	"regexp"
	"strings"
)

// mediaIDPattern matches the provider's media identifiers: exactly 11
// characters from the URL-safe base64 alphabet.
var mediaIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// DefaultAllowedHosts lists the provider hostnames recognized when
// extracting a media identifier from a URL.
var DefaultAllowedHosts = []string{
	"www.youtube.com",
	"youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtu.be",
}

// ExtractMediaID extracts the media identifier from raw, which may be a
// bare identifier or a URL on one of the default provider hosts. It is
// purely syntactic and never touches the network. Failure is reported
// as a ValidationError.
func ExtractMediaID(raw string) (string, error) {
	return extractMediaID(raw, DefaultAllowedHosts)
}

// ExtractMediaID is like the package function but recognizes the hosts
// the client was configured with.
func (c *Client) ExtractMediaID(raw string) (string, error) {
	return extractMediaID(raw, c.config.AllowedHosts)
}

func extractMediaID(raw string, allowedHosts []string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Field: "url", Message: "media URL or id is required"}
	}
	if mediaIDPattern.MatchString(raw) {
		return raw, nil
	}

	// Tolerate scheme-less links like "youtu.be/abc". A bare id never
	// reaches this point, so the prefix cannot mangle one.
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return "", &ValidationError{Field: "url", Message: "not a valid URL: " + raw}
	}
	host := strings.ToLower(u.Hostname())
	if !hostAllowed(host, allowedHosts) {
		return "", &ValidationError{Field: "url", Message: "unrecognized host: " + u.Hostname()}
	}

	if id := u.Query().Get("v"); mediaIDPattern.MatchString(id) {
		return id, nil
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(segments) == 2 && (segments[0] == "embed" || segments[0] == "shorts"):
		if mediaIDPattern.MatchString(segments[1]) {
			return segments[1], nil
		}
	case len(segments) == 1:
		// Short-link form: the id is the whole path.
		if mediaIDPattern.MatchString(segments[0]) {
			return segments[0], nil
		}
	}
	return "", &ValidationError{Field: "url", Message: "no media id found in URL: " + raw}
}

func hostAllowed(host string, allowed []string) bool {
	for _, h := range allowed {
		if host == strings.ToLower(h) {
			return true
		}
	}
	return false
}
