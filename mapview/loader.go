package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
	"golang.org/x/sync/errgroup"
)

// batch collects the per comment and per reply results of one load. Items
// are filled from concurrent goroutines.
type batch struct {
	mutex            sync.Mutex
	commentLikes     map[campus.ReportID]int
	userCommentLikes map[campus.ReportID]bool
	commentReplies   map[campus.ReportID]campus.ReplyList
	replyLikes       map[campus.ReplyID]int
	userReplyLikes   map[campus.ReplyID]bool
}

func newBatch() *batch {
	return &batch{
		commentLikes:     make(map[campus.ReportID]int),
		userCommentLikes: make(map[campus.ReportID]bool),
		commentReplies:   make(map[campus.ReportID]campus.ReplyList),
		replyLikes:       make(map[campus.ReplyID]int),
		userReplyLikes:   make(map[campus.ReplyID]bool),
	}
}

func (b *batch) setComment(id campus.ReportID, count int, liked bool, replies campus.ReplyList) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.commentLikes[id] = count
	b.userCommentLikes[id] = liked
	b.commentReplies[id] = replies
}

func (b *batch) setReply(id campus.ReplyID, count int, liked bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.replyLikes[id] = count
	b.userReplyLikes[id] = liked
}

// Load fetches everything the panel shows for space and commits it in one
// step. It reports false only when the top level fetch fails; failures of
// single comments or replies fall back to zero values.
func (m *Map) Load(ctx context.Context, space campus.Space) bool {
	token := m.token()
	if space.CommentsDisabled() {
		return m.loadLikesOnly(ctx, token, space)
	}

	var (
		reports campus.ReportList
		count   int
		liked   bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reports, err = m.gw.GetReports(gctx, space.ID)
		return err
	})
	g.Go(func() (err error) {
		count, err = m.gw.GetLikeCount(gctx, space.ID)
		return err
	})
	g.Go(func() (err error) {
		liked, err = m.gw.HasUserLiked(gctx, space.ID, m.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		m.logger.Error("loading space failed", "space", space.ID, "err", err)
		return false
	}

	now := m.now()
	if reports == nil {
		reports = campus.ReportList{}
	}
	for i := range reports {
		reports[i].RelativeTime = m.locale.RelativeTime(now, reports[i].Created)
	}

	b := newBatch()
	var eg errgroup.Group
	for _, r := range reports {
		eg.Go(func() error {
			m.loadComment(ctx, now, r.ID, b)
			return nil
		})
	}
	_ = eg.Wait()

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.selection != token {
		m.logger.Debug("dropping stale load", "space", space.ID)
		return true
	}
	s := space.Clone()
	m.view.Space = &s
	m.view.Comments = reports
	m.view.LikesCount = count
	m.view.IsLiked = liked
	m.view.CommentLikes = b.commentLikes
	m.view.UserCommentLikes = b.userCommentLikes
	m.view.CommentReplies = b.commentReplies
	m.view.ReplyLikes = b.replyLikes
	m.view.UserReplyLikes = b.userReplyLikes
	return true
}

func (m *Map) loadComment(ctx context.Context, now time.Time, commentID campus.ReportID, b *batch) {
	var (
		count   int
		liked   bool
		replies campus.ReplyList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		count, err = m.gw.GetCommentLikeCount(gctx, commentID)
		return err
	})
	g.Go(func() (err error) {
		liked, err = m.gw.HasUserLikedComment(gctx, commentID, m.userID)
		return err
	})
	g.Go(func() (err error) {
		replies, err = m.gw.GetReplies(gctx, commentID)
		return err
	})
	if err := g.Wait(); err != nil {
		m.logger.Warn("loading comment failed", "comment", commentID, "err", err)
		b.setComment(commentID, 0, false, campus.ReplyList{})
		return
	}

	if replies == nil {
		replies = campus.ReplyList{}
	}
	var eg errgroup.Group
	for i := range replies {
		replies[i].RelativeTime = m.locale.RelativeTime(now, replies[i].Created)
		replyID := replies[i].ID
		eg.Go(func() error {
			m.loadReply(ctx, replyID, b)
			return nil
		})
	}
	_ = eg.Wait()
	b.setComment(commentID, count, liked, replies)
}

func (m *Map) loadReply(ctx context.Context, replyID campus.ReplyID, b *batch) {
	var (
		count int
		liked bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		count, err = m.gw.GetReplyLikeCount(gctx, replyID)
		return err
	})
	g.Go(func() (err error) {
		liked, err = m.gw.HasUserLikedReply(gctx, replyID, m.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		m.logger.Warn("loading reply failed", "reply", replyID, "err", err)
		b.setReply(replyID, 0, false)
		return
	}
	b.setReply(replyID, count, liked)
}

// loadLikesOnly handles spaces with comments disabled: the comment maps are
// cleared and only the space like state is fetched.
func (m *Map) loadLikesOnly(ctx context.Context, token uint64, space campus.Space) bool {
	var (
		count int
		liked bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		count, err = m.gw.GetLikeCount(gctx, space.ID)
		return err
	})
	g.Go(func() (err error) {
		liked, err = m.gw.HasUserLiked(gctx, space.ID, m.userID)
		return err
	})
	err := g.Wait()
	if err != nil {
		m.logger.Error("loading space likes failed", "space", space.ID, "err", err)
		count, liked = 0, false
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.selection != token {
		return err == nil
	}
	s := space.Clone()
	v := newView(&s)
	v.CommentDraft = m.view.CommentDraft
	v.LikesCount = count
	v.IsLiked = liked
	m.view = v
	return err == nil
}
