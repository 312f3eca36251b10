package urlutil

import (
	"fmt"
	"net/url"
)

// ValidationError marks a scan target the caller supplied as malformed.
// The delivery layer maps it to a 400 instead of a server failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateURL checks that a scan target is a well-formed http(s) URL.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid URL: %v", err)}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Reason: fmt.Sprintf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)}
	}

	if parsed.Host == "" {
		return &ValidationError{Reason: "invalid URL: missing host"}
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL.
// Product image srcs on marketplace pages are frequently protocol- or
// path-relative.
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}
