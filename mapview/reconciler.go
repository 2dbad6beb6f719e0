package mapview

import (
	"context"
	"fmt"

	"github.com/aquilax/campusmap/campus"
)

func (v *View) likeState(kind campus.LikeKind, id int64) campus.LikeState {
	switch kind {
	case campus.SpaceLike:
		return campus.LikeState{Liked: v.IsLiked, Count: v.LikesCount}
	case campus.CommentLike:
		return campus.LikeState{Liked: v.UserCommentLikes[id], Count: v.CommentLikes[id]}
	case campus.ReplyLike:
		return campus.LikeState{Liked: v.UserReplyLikes[id], Count: v.ReplyLikes[id]}
	}
	return campus.LikeState{}
}

func (v *View) setLikeState(kind campus.LikeKind, id int64, st campus.LikeState) {
	switch kind {
	case campus.SpaceLike:
		v.IsLiked, v.LikesCount = st.Liked, st.Count
	case campus.CommentLike:
		v.UserCommentLikes[id], v.CommentLikes[id] = st.Liked, st.Count
	case campus.ReplyLike:
		v.UserReplyLikes[id], v.ReplyLikes[id] = st.Liked, st.Count
	}
}

// flip is the optimistic guess for a toggle.
func flip(st campus.LikeState) campus.LikeState {
	if st.Liked {
		return campus.LikeState{Liked: false, Count: st.Count - 1}
	}
	return campus.LikeState{Liked: true, Count: st.Count + 1}
}

type toggleFunc func(ctx context.Context, id int64, userID campus.UserID) (campus.LikeState, error)

// toggle applies the optimistic flip, calls the gateway and settles the
// result. On failure the previous state is restored and the error returned.
// Settles for a selection that is no longer current leave the view alone.
func (m *Map) toggle(ctx context.Context, kind campus.LikeKind, id int64, call toggleFunc) (campus.LikeState, error) {
	if m.userID == "" {
		return campus.LikeState{}, ErrNotLoggedIn
	}

	m.mutex.Lock()
	if kind == campus.SpaceLike && (m.view.Space == nil || m.view.Space.ID != id) {
		m.mutex.Unlock()
		return campus.LikeState{}, ErrNotSelected
	}
	token := m.selection
	prev := m.view.likeState(kind, id)
	guess := flip(prev)
	m.view.setLikeState(kind, id, guess)
	m.mutex.Unlock()

	st, err := call(ctx, id, m.userID)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err != nil {
		m.logger.Error("toggle failed", "kind", kind, "id", id, "err", err)
		if m.selection == token {
			m.view.setLikeState(kind, id, prev)
		}
		return prev, fmt.Errorf("toggle %s like %d: %w", kind, id, err)
	}
	if m.selection != token {
		return st, nil
	}
	if st != guess {
		m.view.setLikeState(kind, id, st)
	}
	return st, nil
}

// ToggleSpaceLike flips the like of the selected space.
func (m *Map) ToggleSpaceLike(ctx context.Context, spaceID campus.SpaceID) (campus.LikeState, error) {
	return m.toggle(ctx, campus.SpaceLike, spaceID, m.gw.ToggleLike)
}

func (m *Map) ToggleCommentLike(ctx context.Context, commentID campus.ReportID) (campus.LikeState, error) {
	return m.toggle(ctx, campus.CommentLike, commentID, m.gw.ToggleCommentLike)
}

func (m *Map) ToggleReplyLike(ctx context.Context, replyID campus.ReplyID) (campus.LikeState, error) {
	return m.toggle(ctx, campus.ReplyLike, replyID, m.gw.ToggleReplyLike)
}
