// Package mapview is the client side of the campus map: the view model of
// the selected space, optimistic like toggles, the selection loader and the
// periodic refresh.
package mapview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
)

var (
	ErrNotLoggedIn  = errors.New("mapview: not logged in")
	ErrNotSelected  = errors.New("mapview: space is not selected")
	ErrEmptyContent = errors.New("mapview: empty content")
)

// Gateway is the data API the view reads from and writes to.
type Gateway interface {
	GetSpaces(ctx context.Context) ([]campus.Space, error)
	GetReports(ctx context.Context, spaceID campus.SpaceID) (campus.ReportList, error)
	GetReplies(ctx context.Context, commentID campus.ReportID) (campus.ReplyList, error)
	GetLikeCount(ctx context.Context, spaceID campus.SpaceID) (int, error)
	HasUserLiked(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID) (bool, error)
	GetCommentLikeCount(ctx context.Context, commentID campus.ReportID) (int, error)
	HasUserLikedComment(ctx context.Context, commentID campus.ReportID, userID campus.UserID) (bool, error)
	GetReplyLikeCount(ctx context.Context, replyID campus.ReplyID) (int, error)
	HasUserLikedReply(ctx context.Context, replyID campus.ReplyID, userID campus.UserID) (bool, error)

	AddReport(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID, content string) (*campus.Report, error)
	AddReply(ctx context.Context, commentID campus.ReportID, userID campus.UserID, content string) (*campus.Reply, error)
	ToggleLike(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID) (campus.LikeState, error)
	ToggleCommentLike(ctx context.Context, commentID campus.ReportID, userID campus.UserID) (campus.LikeState, error)
	ToggleReplyLike(ctx context.Context, replyID campus.ReplyID, userID campus.UserID) (campus.LikeState, error)
}

// View is the state of the side panel for the selected space.
type View struct {
	Space            *campus.Space
	Comments         campus.ReportList
	LikesCount       int
	IsLiked          bool
	CommentLikes     map[campus.ReportID]int
	UserCommentLikes map[campus.ReportID]bool
	CommentReplies   map[campus.ReportID]campus.ReplyList
	ReplyLikes       map[campus.ReplyID]int
	UserReplyLikes   map[campus.ReplyID]bool

	CommentDraft string
	ReplyingTo   campus.ReportID
	ReplyDraft   string
}

func newView(space *campus.Space) View {
	return View{
		Space:            space,
		Comments:         campus.ReportList{},
		CommentLikes:     make(map[campus.ReportID]int),
		UserCommentLikes: make(map[campus.ReportID]bool),
		CommentReplies:   make(map[campus.ReportID]campus.ReplyList),
		ReplyLikes:       make(map[campus.ReplyID]int),
		UserReplyLikes:   make(map[campus.ReplyID]bool),
	}
}

func (v View) clone() View {
	c := v
	if v.Space != nil {
		s := v.Space.Clone()
		c.Space = &s
	}
	c.Comments = append(campus.ReportList{}, v.Comments...)
	c.CommentLikes = make(map[campus.ReportID]int, len(v.CommentLikes))
	for k, n := range v.CommentLikes {
		c.CommentLikes[k] = n
	}
	c.UserCommentLikes = make(map[campus.ReportID]bool, len(v.UserCommentLikes))
	for k, b := range v.UserCommentLikes {
		c.UserCommentLikes[k] = b
	}
	c.CommentReplies = make(map[campus.ReportID]campus.ReplyList, len(v.CommentReplies))
	for k, rl := range v.CommentReplies {
		c.CommentReplies[k] = append(campus.ReplyList{}, rl...)
	}
	c.ReplyLikes = make(map[campus.ReplyID]int, len(v.ReplyLikes))
	for k, n := range v.ReplyLikes {
		c.ReplyLikes[k] = n
	}
	c.UserReplyLikes = make(map[campus.ReplyID]bool, len(v.UserReplyLikes))
	for k, b := range v.UserReplyLikes {
		c.UserReplyLikes[k] = b
	}
	return c
}

// Map holds the view model of one signed in user. All state changes happen
// under mutex; gateway calls are made without holding it.
type Map struct {
	gw     Gateway
	userID campus.UserID
	locale *campus.Locale
	now    func() time.Time
	logger *slog.Logger

	mutex sync.Mutex
	view  View
	// selection is bumped whenever the selected space changes. Loads and
	// toggles that started under an older selection are discarded.
	selection uint64
}

type Option func(*Map)

func WithLocale(l *campus.Locale) Option {
	return func(m *Map) {
		m.locale = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Map) {
		m.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Map) {
		m.logger = logger
	}
}

func New(gw Gateway, userID campus.UserID, opts ...Option) *Map {
	m := &Map{
		gw:     gw,
		userID: userID,
		locale: campus.English,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		view:   newView(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Map) UserID() campus.UserID {
	return m.userID
}

// Snapshot returns a deep copy of the current view.
func (m *Map) Snapshot() View {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.view.clone()
}

// Selected returns the selected space, or nil.
func (m *Map) Selected() *campus.Space {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.view.Space == nil {
		return nil
	}
	s := m.view.Space.Clone()
	return &s
}

func (m *Map) token() uint64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.selection
}

// Select makes space the selected one and loads its data.
func (m *Map) Select(ctx context.Context, space campus.Space) bool {
	m.mutex.Lock()
	m.selection++
	s := space.Clone()
	m.view = newView(&s)
	m.mutex.Unlock()
	return m.Load(ctx, space)
}

// Deselect closes the panel. In-flight loads for the old selection are
// dropped when they settle.
func (m *Map) Deselect() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.selection++
	m.view = newView(nil)
}

func (m *Map) SetCommentDraft(text string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.view.CommentDraft = text
}

// StartReply opens the reply form under a comment.
func (m *Map) StartReply(commentID campus.ReportID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.view.ReplyingTo = commentID
	m.view.ReplyDraft = ""
}

func (m *Map) CancelReply() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.view.ReplyingTo = 0
	m.view.ReplyDraft = ""
}
