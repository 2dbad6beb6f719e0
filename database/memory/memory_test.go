package memory

import (
	"reflect"
	"testing"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementsDatabase(t *testing.T) {
	inter := reflect.TypeOf((*database.Database)(nil)).Elem()

	if !reflect.TypeOf(New()).Implements(inter) {
		t.Errorf("Memory does not implement the database interface")
	}
}

func TestMemory_ToggleLikeIsPaired(t *testing.T) {
	m := New()
	for _, kind := range []campus.LikeKind{campus.SpaceLike, campus.CommentLike, campus.ReplyLike} {
		before, _ := m.CountLikes(kind, 1)
		state, err := m.ToggleLike(kind, 1, "u1")
		require.NoError(t, err)
		assert.Equal(t, campus.LikeState{Liked: true, Count: before + 1}, state)
		state, err = m.ToggleLike(kind, 1, "u1")
		require.NoError(t, err)
		assert.Equal(t, campus.LikeState{Liked: false, Count: before}, state)
	}
}

func TestMemory_LikeKindsAreIndependent(t *testing.T) {
	m := New()
	_, _ = m.ToggleLike(campus.SpaceLike, 1, "u1")
	liked, _ := m.HasLiked(campus.CommentLike, 1, "u1")
	assert.False(t, liked)
	count, _ := m.CountLikes(campus.SpaceLike, 1)
	assert.Equal(t, 1, count)
}

func TestMemory_ReportOrdering(t *testing.T) {
	m := New()
	grade := 3
	_ = m.AddUser(&campus.User{ID: "s1", Type: campus.UserStudent, Grade: &grade})
	now := time.Now().UTC()
	_, _ = m.AddReport(&campus.Report{SpaceID: 1, Post: campus.Post{UserID: "s1", Content: "old", Created: now.Add(-time.Minute)}})
	_, _ = m.AddReport(&campus.Report{SpaceID: 1, Post: campus.Post{UserID: "s1", Content: "new", Created: now}})
	_, _ = m.AddReport(&campus.Report{SpaceID: 2, Post: campus.Post{UserID: "s1", Content: "other"}})

	reports, err := m.GetReports(1)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "new", reports[0].Content)
	assert.Equal(t, campus.UserStudent, reports[0].UserType)

	recent, err := m.GetRecentReports(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestMemory_GetUsersPaging(t *testing.T) {
	m := New()
	for _, id := range []string{"a", "b", "c"} {
		_ = m.AddUser(&campus.User{ID: id})
	}
	users, _ := m.GetUsers(2, 2)
	require.Len(t, users, 1)
	assert.Equal(t, "c", users[0].ID)
	users, _ = m.GetUsers(2, 5)
	assert.Empty(t, users)
}
