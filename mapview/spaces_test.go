package mapview

import (
	"context"
	"testing"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceRepository_Initialize(t *testing.T) {
	gw := newFakeGateway()
	gw.spaces = []campus.Space{{ID: 7, Name: "!정문"}}
	r := NewSpaceRepository(gw, nil)
	assert.False(t, r.Initialized())
	assert.Equal(t, campus.DefaultSpaces(), r.Get())

	require.NoError(t, r.Initialize(context.Background()))
	require.NoError(t, r.Initialize(context.Background()))
	assert.Equal(t, 1, gw.called("GetSpaces"))
	assert.Equal(t, []campus.Space{{ID: 7, Name: "!정문"}}, r.Get())

	s, ok := r.Find(7)
	assert.True(t, ok)
	assert.Equal(t, "정문", s.DisplayName())
	_, ok = r.Find(1)
	assert.False(t, ok)
}

func TestSpaceRepository_Fallback(t *testing.T) {
	gw := newFakeGateway()
	gw.failOn("GetSpaces", 0, errUnavailable)
	r := NewSpaceRepository(gw, nil)

	err := r.Initialize(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.True(t, r.Initialized())
	assert.Equal(t, campus.DefaultSpaces(), r.Get())

	// Refresh keeps the current list when the fetch fails.
	assert.Error(t, r.Refresh(context.Background()))
	assert.Len(t, r.Get(), 3)
}

func TestSpaceRepository_GetIsCopy(t *testing.T) {
	r := NewSpaceRepository(newFakeGateway(), nil)
	require.NoError(t, r.Initialize(context.Background()))
	spaces := r.Get()
	spaces[0].Name = "changed"
	spaces[0].Coordinates[0] = campus.Point{}
	assert.Equal(t, campus.DefaultSpaces(), r.Get())
}

func TestRefresher(t *testing.T) {
	f := newFixture(t)
	repo := NewSpaceRepository(f.gw, nil)
	r := NewRefresher(f.m, repo, 5*time.Millisecond)
	assert.ErrorIs(t, r.Start(context.Background()), ErrNotInitialized)

	require.NoError(t, repo.Initialize(context.Background()))
	f.selectSpace(t)
	loads := f.gw.called("GetReports")
	require.NoError(t, r.Start(context.Background()))
	r.Restart()

	assert.Eventually(t, func() bool {
		return f.gw.called("GetSpaces") >= 3 && f.gw.called("GetReports") > loads
	}, time.Second, time.Millisecond)

	// New comments show up after a cycle.
	c := f.gw.addReport(1, "later", now)
	assert.Eventually(t, func() bool {
		v := f.m.Snapshot()
		return len(v.Comments) == 3 && v.Comments[0].ID == c.ID
	}, time.Second, time.Millisecond)

	r.Stop()
	after := f.gw.called("GetSpaces")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, f.gw.called("GetSpaces"))
}

func TestRefresher_SelectRestartsTimer(t *testing.T) {
	f := newFixture(t)
	repo := NewSpaceRepository(f.gw, nil)
	require.NoError(t, repo.Initialize(context.Background()))
	r := NewRefresher(f.m, repo, 200*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	spaces := f.gw.called("GetSpaces")
	for i := 0; i < 8; i++ {
		time.Sleep(30 * time.Millisecond)
		if i%2 == 0 {
			require.True(t, r.Select(context.Background(), space(1)))
		} else {
			r.Deselect()
		}
	}
	assert.Equal(t, spaces, f.gw.called("GetSpaces"), "no cycle while the selection keeps changing")
	assert.Nil(t, f.m.Selected())

	require.True(t, r.Select(context.Background(), space(1)))
	assert.Eventually(t, func() bool {
		return f.gw.called("GetSpaces") > spaces
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, campus.SpaceID(1), f.m.Selected().ID)
}

func TestRefresher_NoSelection(t *testing.T) {
	gw := newFakeGateway()
	m := New(gw, user)
	repo := NewSpaceRepository(gw, nil)
	require.NoError(t, repo.Initialize(context.Background()))
	r := NewRefresher(m, repo, 5*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))
	assert.Eventually(t, func() bool { return gw.called("GetSpaces") >= 2 }, time.Second, time.Millisecond)
	r.Stop()
	assert.Equal(t, 0, gw.called("GetReports"))
}

func TestMarkers(t *testing.T) {
	spaces := []campus.Space{
		{ID: 1, Name: "!본관", Coordinates: map[int]campus.Point{0: {X: 10, Y: -10}, 1: {X: 5, Y: -5}, 2: {X: 2, Y: -2}}},
		{ID: 2, Name: "운동장^", Coordinates: map[int]campus.Point{0: {X: 8, Y: -8}}},
		{ID: 3, Name: "창고"},
	}
	tests := []struct {
		level int
		scale float64
		pos   []campus.Point
	}{
		{0, 1.8, []campus.Point{{X: 10, Y: -10}, {X: 8, Y: -8}}},
		{1, 1.1, []campus.Point{{X: 5, Y: -5}, {X: 8, Y: -8}}},
		{2, 0.9, []campus.Point{{X: 2, Y: -2}, {X: 8, Y: -8}}},
		{5, 1.0, []campus.Point{{X: 5, Y: -5}, {X: 8, Y: -8}}},
	}
	selected := spaces[1]
	for _, tt := range tests {
		got := Markers(spaces, tt.level, &selected)
		require.Len(t, got, 2)
		for i, m := range got {
			assert.Equal(t, tt.scale, m.Scale)
			assert.Equal(t, tt.pos[i], m.Position)
		}
		assert.Equal(t, "본관", got[0].Label)
		assert.True(t, got[0].LabelAbove)
		assert.False(t, got[0].Selected)
		assert.Equal(t, "운동장", got[1].Label)
		assert.False(t, got[1].LabelAbove)
		assert.True(t, got[1].Selected)
	}
}
