package graph

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddArtistKeepsFirstAttributes(t *testing.T) {
	g := NewGraph()

	assert.True(t, g.AddArtist(Artist{Name: "Elton John", ID: "first", URI: "spotify:artist:first"}))
	assert.False(t, g.AddArtist(Artist{Name: "Elton John", ID: "second", URI: "spotify:artist:second"}))

	a, ok := g.Artist("Elton John")
	require.True(t, ok)
	assert.Equal(t, "first", a.ID)
	assert.Equal(t, "spotify:artist:first", a.URI)
	assert.Equal(t, 1, g.ArtistCount())
}

func TestGraph_AddCollaboration(t *testing.T) {
	g := NewGraph()
	g.AddArtist(Artist{Name: "A"})
	g.AddArtist(Artist{Name: "B"})

	added, err := g.AddCollaboration("A", "B", Release{Name: "First Single", ID: "r1"})
	require.NoError(t, err)
	assert.True(t, added)

	// Same pair, either direction, is ignored
	added, err = g.AddCollaboration("B", "A", Release{Name: "Second Single", ID: "r2"})
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, 1, g.CollaborationCount())
	c, ok := g.Collaboration("B", "A")
	require.True(t, ok)
	assert.Equal(t, "First Single", c.Release.Name)
	assert.True(t, c.Connects("B", "A"))
	assert.True(t, g.HasCollaboration("A", "B"))

	assert.Equal(t, []string{"B"}, g.Neighbors("A"))
	assert.Equal(t, []string{"A"}, g.Neighbors("B"))
}

func TestGraph_AddCollaborationErrors(t *testing.T) {
	g := NewGraph()
	g.AddArtist(Artist{Name: "A"})

	_, err := g.AddCollaboration("A", "A", Release{})
	assert.True(t, errors.Is(err, ErrSelfCollaboration))

	_, err = g.AddCollaboration("A", "Missing", Release{})
	assert.True(t, errors.Is(err, ErrArtistNotFound))
	assert.Contains(t, err.Error(), "Missing")

	_, err = g.AddCollaboration("Missing", "A", Release{})
	assert.True(t, errors.Is(err, ErrArtistNotFound))

	assert.Equal(t, 0, g.CollaborationCount())
}

func TestGraph_InsertionOrder(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"C", "A", "B"} {
		g.AddArtist(Artist{Name: name})
	}
	_, _ = g.AddCollaboration("C", "A", Release{Name: "x"})
	_, _ = g.AddCollaboration("C", "B", Release{Name: "y"})

	assert.Equal(t, []string{"C", "A", "B"}, g.Names())

	edges := g.Collaborations()
	require.Len(t, edges, 2)
	assert.Equal(t, "x", edges[0].Release.Name)
	assert.Equal(t, "y", edges[1].Release.Name)

	// Returned slices are copies
	names := g.Names()
	names[0] = "mutated"
	assert.Equal(t, "C", g.Names()[0])
}

func TestSnapshot_RoundTripThroughJSON(t *testing.T) {
	g := NewGraph()
	g.AddArtist(Artist{Name: "A", ID: "1", URI: "u1", Href: "h1"})
	g.AddArtist(Artist{Name: "B", ID: "2", URI: "u2", Href: "h2"})
	_, err := g.AddCollaboration("A", "B", Release{Name: "Duet", ID: "r", URI: "ru"})
	require.NoError(t, err)

	data, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, g.Artists(), restored.Artists())
	assert.Equal(t, g.Collaborations(), restored.Collaborations())
}

func TestFromSnapshot_RejectsInvalidInput(t *testing.T) {
	_, err := FromSnapshot(Snapshot{Artists: []Artist{{Name: "A"}, {Name: "A"}}})
	assert.True(t, errors.Is(err, ErrDuplicateArtist))

	_, err = FromSnapshot(Snapshot{
		Artists:        []Artist{{Name: "A"}},
		Collaborations: []Collaboration{{Source: "A", Target: "B"}},
	})
	assert.True(t, errors.Is(err, ErrArtistNotFound))
}

func TestPathIndex_Roles(t *testing.T) {
	idx := NewPathIndex([]string{"X", "Y", "Z"})

	assert.Equal(t, RoleAnchor, idx.NodeRole("X"))
	assert.Equal(t, RolePath, idx.NodeRole("Y"))
	assert.Equal(t, RoleAnchor, idx.NodeRole("Z"))
	assert.Equal(t, RoleBasic, idx.NodeRole("W"))

	assert.True(t, idx.EdgeOnPath(Collaboration{Source: "X", Target: "Z"}))
	assert.False(t, idx.EdgeOnPath(Collaboration{Source: "X", Target: "W"}))
}

func TestPathIndex_RevisitsAndEmptyPath(t *testing.T) {
	idx := NewPathIndex([]string{"A", "B", "A", "A"})
	assert.Equal(t, 3, idx.Visits("A"))
	assert.Equal(t, 2, idx.Distinct())
	// A is both first and last
	assert.Equal(t, RoleAnchor, idx.NodeRole("A"))
	assert.Equal(t, RolePath, idx.NodeRole("B"))

	empty := NewPathIndex(nil)
	assert.Equal(t, RoleBasic, empty.NodeRole(""))
	assert.Equal(t, 0, empty.Distinct())
}
