package client

import (
	"net/url"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z_-]*$`)

// ParseDescriptor accepts either a raw slug or an http(s) stream URL. kind
// applies to slugs only.
func ParseDescriptor(input, kind string) (Descriptor, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Descriptor{}, ErrInvalidInput
	}
	if slugPattern.MatchString(s) {
		return Descriptor{Slug: s, Kind: kind}, nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return Descriptor{}, ErrInvalidInput
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return Descriptor{DirectURL: s}, nil
	}
	return Descriptor{}, ErrInvalidInput
}

// DescriptorFor returns the descriptor that plays item. Items carrying a
// URL play it directly.
func DescriptorFor(item Item) Descriptor {
	if item.URL != "" {
		return Descriptor{DirectURL: item.URL}
	}
	return Descriptor{Slug: item.Slug, Kind: item.Kind}
}
