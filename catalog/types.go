package catalog

import (
	"context"
	"fmt"
	"strings"
)

// ReleaseType selects which release kind ListReleases returns.
type ReleaseType string

const (
	// ReleaseSingle lists singles and EPs.
	ReleaseSingle ReleaseType = "single"

	// ReleaseAlbum lists full albums.
	ReleaseAlbum ReleaseType = "album"
)

// ParseReleaseType converts a user supplied value into a ReleaseType.
func ParseReleaseType(s string) (ReleaseType, error) {
	switch ReleaseType(strings.ToLower(strings.TrimSpace(s))) {
	case ReleaseSingle:
		return ReleaseSingle, nil
	case ReleaseAlbum:
		return ReleaseAlbum, nil
	default:
		return "", fmt.Errorf("unknown release type %q (want %q or %q)", s, ReleaseSingle, ReleaseAlbum)
	}
}

// Valid reports whether t is a known release type.
func (t ReleaseType) Valid() bool {
	return t == ReleaseSingle || t == ReleaseAlbum
}

func (t ReleaseType) String() string {
	return string(t)
}

// Artist is a catalog artist resource.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
	Href string `json:"href"`
}

// Release is a catalog release with its credited artists.
type Release struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URI     string   `json:"uri"`
	Artists []Artist `json:"artists"`
}

// ReleaseQuery filters a ListReleases call.
type ReleaseQuery struct {
	// Type is the release kind to list.
	Type ReleaseType

	// Limit caps the number of releases returned.
	Limit int

	// Market is an ISO 3166-1 alpha-2 country code. Empty means the catalog default.
	Market string
}

// Client is the catalog surface a walk depends on.
// Implementations must be safe for concurrent use.
type Client interface {
	// SearchArtist resolves a name to its best matching artist.
	// It returns a *NotFoundError when nothing matches.
	SearchArtist(ctx context.Context, name string) (Artist, error)

	// ListReleases lists the releases of an artist.
	ListReleases(ctx context.Context, artistID string, query ReleaseQuery) ([]Release, error)
}
