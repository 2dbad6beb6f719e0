package mapview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "student1"

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func space(id campus.SpaceID) campus.Space {
	for _, s := range campus.DefaultSpaces() {
		if s.ID == id {
			return s
		}
	}
	panic("unknown space")
}

type fixture struct {
	gw *fakeGateway
	m  *Map
	c1 campus.Report
	c2 campus.Report
	r1 campus.Reply
	r2 campus.Reply
}

// newFixture seeds space 1 with two comments. C1 has two replies.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{gw: newFakeGateway()}
	f.c1 = f.gw.addReport(1, "first", now.Add(-2*time.Hour))
	f.c2 = f.gw.addReport(1, "second", now.Add(-90*time.Second))
	f.r1 = f.gw.addReply(f.c1.ID, "reply one", now.Add(-30*time.Second))
	f.r2 = f.gw.addReply(f.c1.ID, "reply two", now)
	f.gw.setLike(campus.SpaceLike, 1, "other")
	f.gw.setLike(campus.SpaceLike, 1, user)
	f.gw.setLike(campus.CommentLike, f.c1.ID, "other")
	f.gw.setLike(campus.ReplyLike, f.r2.ID, user)
	f.m = New(f.gw, user, WithClock(func() time.Time { return now }))
	return f
}

func (f *fixture) selectSpace(t *testing.T) {
	t.Helper()
	require.True(t, f.m.Select(context.Background(), space(1)))
}

func TestMap_Select(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)

	v := f.m.Snapshot()
	require.NotNil(t, v.Space)
	assert.Equal(t, campus.SpaceID(1), v.Space.ID)
	assert.Equal(t, 2, v.LikesCount)
	assert.True(t, v.IsLiked)

	require.Len(t, v.Comments, 2)
	assert.Equal(t, f.c2.ID, v.Comments[0].ID)
	assert.Equal(t, "1 min ago", v.Comments[0].RelativeTime)
	assert.Equal(t, "2 hr ago", v.Comments[1].RelativeTime)

	assert.Equal(t, 1, v.CommentLikes[f.c1.ID])
	assert.False(t, v.UserCommentLikes[f.c1.ID])
	assert.Equal(t, 0, v.CommentLikes[f.c2.ID])

	replies := v.CommentReplies[f.c1.ID]
	require.Len(t, replies, 2)
	assert.Equal(t, "30 sec ago", replies[0].RelativeTime)
	assert.Equal(t, "just now", replies[1].RelativeTime)
	assert.Equal(t, campus.ReplyList{}, v.CommentReplies[f.c2.ID])
	assert.Equal(t, 1, v.ReplyLikes[f.r2.ID])
	assert.True(t, v.UserReplyLikes[f.r2.ID])
	assert.False(t, v.UserReplyLikes[f.r1.ID])
}

func TestMap_LoadPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.gw.failOn("GetReplies", f.c1.ID, errUnavailable)
	f.gw.failOn("GetCommentLikeCount", f.c2.ID, errUnavailable)
	f.selectSpace(t)

	v := f.m.Snapshot()
	require.Len(t, v.Comments, 2)
	assert.Equal(t, campus.ReplyList{}, v.CommentReplies[f.c1.ID])
	assert.Equal(t, 0, v.CommentLikes[f.c1.ID])
	assert.Equal(t, 0, v.CommentLikes[f.c2.ID])
	assert.Equal(t, 2, v.LikesCount)
	assert.Empty(t, v.ReplyLikes)
}

func TestMap_LoadIsolatesFailingComment(t *testing.T) {
	tests := []struct {
		name        string
		call        string
		wantCount   int
		wantLiked   bool
		wantReplies int
	}{
		{"like count", "GetCommentLikeCount", 0, true, 1},
		{"liked flag", "HasUserLikedComment", 1, false, 1},
		{"replies", "GetReplies", 1, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gw.setLike(campus.CommentLike, f.c2.ID, user)
			f.gw.addReply(f.c2.ID, "under second", now)
			c3 := f.gw.addReport(1, "third", now.Add(-time.Minute))
			r3 := f.gw.addReply(c3.ID, "under third", now)
			f.gw.setLike(campus.CommentLike, c3.ID, "other")
			f.gw.setLike(campus.ReplyLike, r3.ID, user)
			f.gw.failOn(tt.call, f.c2.ID, errUnavailable)
			f.selectSpace(t)

			v := f.m.Snapshot()
			require.Len(t, v.Comments, 3)

			assert.Equal(t, tt.wantCount, v.CommentLikes[f.c2.ID])
			assert.Equal(t, tt.wantLiked, v.UserCommentLikes[f.c2.ID])
			assert.Len(t, v.CommentReplies[f.c2.ID], tt.wantReplies)

			assert.Equal(t, 1, v.CommentLikes[f.c1.ID])
			assert.False(t, v.UserCommentLikes[f.c1.ID])
			assert.Len(t, v.CommentReplies[f.c1.ID], 2)
			assert.Equal(t, 1, v.ReplyLikes[f.r2.ID])
			assert.True(t, v.UserReplyLikes[f.r2.ID])

			assert.Equal(t, 1, v.CommentLikes[c3.ID])
			assert.False(t, v.UserCommentLikes[c3.ID])
			require.Len(t, v.CommentReplies[c3.ID], 1)
			assert.Equal(t, r3.ID, v.CommentReplies[c3.ID][0].ID)
			assert.Equal(t, 1, v.ReplyLikes[r3.ID])
			assert.True(t, v.UserReplyLikes[r3.ID])
		})
	}
}

func TestMap_LoadReplyFailure(t *testing.T) {
	f := newFixture(t)
	f.gw.failOn("HasUserLikedReply", f.r2.ID, errUnavailable)
	f.selectSpace(t)

	v := f.m.Snapshot()
	assert.Equal(t, 0, v.ReplyLikes[f.r2.ID])
	assert.False(t, v.UserReplyLikes[f.r2.ID])
	assert.Len(t, v.CommentReplies[f.c1.ID], 2)
	assert.Equal(t, 1, v.CommentLikes[f.c1.ID])
}

func TestMap_LoadTopLevelFailure(t *testing.T) {
	f := newFixture(t)
	f.gw.failOn("GetLikeCount", 1, errUnavailable)
	assert.False(t, f.m.Select(context.Background(), space(1)))

	v := f.m.Snapshot()
	require.NotNil(t, v.Space)
	assert.Empty(t, v.Comments)
	assert.Equal(t, 0, v.LikesCount)
}

func TestMap_LoadCommentsDisabled(t *testing.T) {
	f := newFixture(t)
	s := space(1)
	s.Name = "운동장^"
	require.True(t, f.m.Select(context.Background(), s))

	v := f.m.Snapshot()
	assert.Empty(t, v.Comments)
	assert.Empty(t, v.CommentLikes)
	assert.Empty(t, v.CommentReplies)
	assert.Equal(t, 2, v.LikesCount)
	assert.True(t, v.IsLiked)
	assert.Equal(t, 0, f.gw.called("GetReports"))
}

func TestMap_LoadCommentsDisabledFailure(t *testing.T) {
	f := newFixture(t)
	f.gw.failOn("HasUserLiked", 1, errUnavailable)
	s := space(1)
	s.Name = "운동장^"
	assert.False(t, f.m.Select(context.Background(), s))

	v := f.m.Snapshot()
	assert.Equal(t, 0, v.LikesCount)
	assert.False(t, v.IsLiked)
}

func TestMap_StaleLoadDiscarded(t *testing.T) {
	f := newFixture(t)
	gate := f.gw.hold("GetReports")
	done := make(chan bool)
	go func() {
		done <- f.m.Select(context.Background(), space(1))
	}()
	require.Eventually(t, func() bool { return f.gw.called("GetReports") == 1 }, time.Second, time.Millisecond)

	f.m.Deselect()
	close(gate)
	<-done

	v := f.m.Snapshot()
	assert.Nil(t, v.Space)
	assert.Empty(t, v.Comments)
}

func TestMap_Toggle(t *testing.T) {
	tests := []struct {
		name   string
		toggle func(f *fixture) (campus.LikeState, error)
		state  func(v View, f *fixture) campus.LikeState
		want   campus.LikeState
	}{
		{
			"space",
			func(f *fixture) (campus.LikeState, error) {
				return f.m.ToggleSpaceLike(context.Background(), 1)
			},
			func(v View, f *fixture) campus.LikeState {
				return campus.LikeState{Liked: v.IsLiked, Count: v.LikesCount}
			},
			campus.LikeState{Liked: false, Count: 1},
		},
		{
			"comment",
			func(f *fixture) (campus.LikeState, error) {
				return f.m.ToggleCommentLike(context.Background(), f.c1.ID)
			},
			func(v View, f *fixture) campus.LikeState {
				return campus.LikeState{Liked: v.UserCommentLikes[f.c1.ID], Count: v.CommentLikes[f.c1.ID]}
			},
			campus.LikeState{Liked: true, Count: 2},
		},
		{
			"reply",
			func(f *fixture) (campus.LikeState, error) {
				return f.m.ToggleReplyLike(context.Background(), f.r2.ID)
			},
			func(v View, f *fixture) campus.LikeState {
				return campus.LikeState{Liked: v.UserReplyLikes[f.r2.ID], Count: v.ReplyLikes[f.r2.ID]}
			},
			campus.LikeState{Liked: false, Count: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.selectSpace(t)
			before := tt.state(f.m.Snapshot(), f)

			got, err := tt.toggle(f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, tt.state(f.m.Snapshot(), f))

			got, err = tt.toggle(f)
			require.NoError(t, err)
			assert.Equal(t, before, got)
			assert.Equal(t, before, tt.state(f.m.Snapshot(), f))

			// A fresh load agrees with the settled view.
			fresh := New(f.gw, user, WithClock(func() time.Time { return now }))
			require.True(t, fresh.Select(context.Background(), space(1)))
			assert.Equal(t, before, tt.state(fresh.Snapshot(), f))
		})
	}
}

func TestMap_ToggleRevertsOnFailure(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)
	f.gw.failOn("ToggleCommentLike", f.c1.ID, errUnavailable)

	_, err := f.m.ToggleCommentLike(context.Background(), f.c1.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)

	v := f.m.Snapshot()
	assert.Equal(t, 1, v.CommentLikes[f.c1.ID])
	assert.False(t, v.UserCommentLikes[f.c1.ID])
}

func TestMap_ToggleShowsGuessUntilSettled(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)
	gate := f.gw.hold("ToggleLike")
	f.gw.override = &campus.LikeState{Liked: false, Count: 7}

	done := make(chan error)
	go func() {
		_, err := f.m.ToggleSpaceLike(context.Background(), 1)
		done <- err
	}()
	require.Eventually(t, func() bool { return f.gw.called("ToggleLike") == 1 }, time.Second, time.Millisecond)

	v := f.m.Snapshot()
	assert.False(t, v.IsLiked)
	assert.Equal(t, 1, v.LikesCount)

	close(gate)
	require.NoError(t, <-done)
	v = f.m.Snapshot()
	assert.False(t, v.IsLiked)
	assert.Equal(t, 7, v.LikesCount)
}

func TestMap_ToggleErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.ToggleSpaceLike(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotSelected)

	anon := New(f.gw, "")
	_, err = anon.ToggleCommentLike(context.Background(), f.c1.ID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, 0, f.gw.called("ToggleCommentLike"))
}

func TestMap_SubmitComment(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)
	f.m.SetCommentDraft("  hello  ")

	r, err := f.m.SubmitComment(context.Background(), 1, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Content)

	v := f.m.Snapshot()
	require.Len(t, v.Comments, 3)
	assert.Equal(t, r.ID, v.Comments[0].ID)
	assert.Equal(t, 0, v.CommentLikes[r.ID])
	assert.Equal(t, campus.ReplyList{}, v.CommentReplies[r.ID])
	assert.Equal(t, "", v.CommentDraft)
}

func TestMap_SubmitReply(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)
	f.m.StartReply(f.c1.ID)
	f.m.SetReplyDraft("thanks")

	r, err := f.m.SubmitReply(context.Background(), f.c1.ID, "thanks")
	require.NoError(t, err)

	v := f.m.Snapshot()
	replies := v.CommentReplies[f.c1.ID]
	require.Len(t, replies, 3)
	assert.Equal(t, r.ID, replies[2].ID)
	assert.Equal(t, 0, v.ReplyLikes[r.ID])
	assert.Equal(t, campus.ReportID(0), v.ReplyingTo)
	assert.Equal(t, "", v.ReplyDraft)
}

func TestMap_SubmitEmpty(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)

	_, err := f.m.SubmitComment(context.Background(), 1, " \n\t ")
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = f.m.SubmitReply(context.Background(), f.c1.ID, "")
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Equal(t, 0, f.gw.called("AddReport"))
	assert.Equal(t, 0, f.gw.called("AddReply"))
}

func TestMap_SubmitFailureKeepsDraft(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"gateway message", &gateway.Error{Status: 429, Message: "잠시 후 다시 시도해주세요."}, "잠시 후 다시 시도해주세요."},
		{"transport", errUnavailable, "Failed to post the comment."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.selectSpace(t)
			f.m.SetCommentDraft("draft")
			f.gw.failOn("AddReport", 1, tt.err)

			_, err := f.m.SubmitComment(context.Background(), 1, "draft")
			var serr *SubmitError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.want, serr.Message)
			assert.ErrorIs(t, err, tt.err)

			v := f.m.Snapshot()
			assert.Equal(t, "draft", v.CommentDraft)
			assert.Len(t, v.Comments, 2)
		})
	}
}

func TestMap_SnapshotIsCopy(t *testing.T) {
	f := newFixture(t)
	f.selectSpace(t)
	v := f.m.Snapshot()
	v.CommentLikes[f.c1.ID] = 99
	v.Space.Coordinates[0] = campus.Point{}
	assert.Equal(t, 1, f.m.Snapshot().CommentLikes[f.c1.ID])
	assert.Equal(t, space(1).Coordinates[0], f.m.Snapshot().Space.Coordinates[0])
}
