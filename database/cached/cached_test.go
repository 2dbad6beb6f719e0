package cached

import (
	"reflect"
	"testing"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
	"github.com/aquilax/campusmap/database/memory"
	"github.com/aquilax/campusmap/mapview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementsDatabase(t *testing.T) {
	inter := reflect.TypeOf((*database.Database)(nil)).Elem()

	if !reflect.TypeOf(New(memory.New())).Implements(inter) {
		t.Errorf("Cached does not implement the database interface")
	}
}

func TestCached_SpacesAreServedFromCache(t *testing.T) {
	mem := memory.New()
	_, _ = mem.AddSpace(&campus.Space{Name: "Library"})
	c := NewWithTTL(mem, time.Hour)

	spaces, err := c.GetSpaces()
	require.NoError(t, err)
	require.Len(t, spaces, 1)

	// written behind the cache's back
	_, _ = mem.AddSpace(&campus.Space{Name: "Gym"})
	spaces, _ = c.GetSpaces()
	assert.Len(t, spaces, 1)

	// written through the cache
	_, _ = c.AddSpace(&campus.Space{Name: "Office^"})
	spaces, _ = c.GetSpaces()
	assert.Len(t, spaces, 3)
}

func TestCached_OutOfBandSpacesAppearAfterTTL(t *testing.T) {
	mem := memory.New()
	c := NewWithTTL(mem, 50*time.Millisecond)

	spaces, err := c.GetSpaces()
	require.NoError(t, err)
	require.Empty(t, spaces)

	id, err := mem.AddSpace(&campus.Space{Name: "Gym"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		spaces, err := c.GetSpaces()
		return err == nil && len(spaces) == 1
	}, 2*time.Second, 20*time.Millisecond)
	s, err := c.GetSpace(id)
	require.NoError(t, err)
	assert.Equal(t, "Gym", s.Name)
}

func TestCached_DefaultSpaceTTLBeatsClientRefresh(t *testing.T) {
	assert.Less(t, DefaultSpaceTTL, mapview.DefaultRefreshPeriod)
}

func TestCached_SnapshotsAreIndependent(t *testing.T) {
	mem := memory.New()
	_, _ = mem.AddSpace(&campus.Space{Name: "Library", Coordinates: map[int]campus.Point{0: {X: 1}}})
	c := New(mem)
	spaces, _ := c.GetSpaces()
	spaces[0].Coordinates[0] = campus.Point{X: 42}
	again, _ := c.GetSpaces()
	assert.Equal(t, campus.Point{X: 1}, again[0].Coordinates[0])
}

func TestCached_FirstVisitInvalidatesUser(t *testing.T) {
	c := New(memory.New())
	require.NoError(t, c.AddUser(&campus.User{ID: "u1", IsFirst: true}))
	u, err := c.GetUser("u1")
	require.NoError(t, err)
	assert.True(t, u.IsFirst)

	require.NoError(t, c.ClearFirstVisit("u1"))
	u, err = c.GetUser("u1")
	require.NoError(t, err)
	assert.False(t, u.IsFirst)
}

func TestCached_LikesPassThrough(t *testing.T) {
	c := New(memory.New())
	_, _ = c.ToggleLike(campus.SpaceLike, 1, "u1")
	count, err := c.CountLikes(campus.SpaceLike, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
