package mapview

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
)

var errUnavailable = errors.New("unavailable")

type likeKey struct {
	kind campus.LikeKind
	id   int64
	user campus.UserID
}

// fakeGateway is an in-memory Gateway. Failures can be injected per call
// name and subject id.
type fakeGateway struct {
	mutex   sync.Mutex
	spaces  []campus.Space
	reports map[campus.SpaceID]campus.ReportList
	replies map[campus.ReportID]campus.ReplyList
	likes   map[likeKey]bool
	lastID  int64

	fail  map[string]error
	calls map[string]int
	// gate, when set, blocks the named call until it is closed.
	gate map[string]chan struct{}
	// override replaces toggle results.
	override *campus.LikeState
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		spaces:  campus.DefaultSpaces(),
		reports: make(map[campus.SpaceID]campus.ReportList),
		replies: make(map[campus.ReportID]campus.ReplyList),
		likes:   make(map[likeKey]bool),
		lastID:  100,
		fail:    make(map[string]error),
		calls:   make(map[string]int),
		gate:    make(map[string]chan struct{}),
	}
}

func failKey(name string, id int64) string {
	return name + "/" + strconv.FormatInt(id, 10)
}

func (f *fakeGateway) failOn(name string, id int64, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.fail[failKey(name, id)] = err
}

func (f *fakeGateway) hold(name string) chan struct{} {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	ch := make(chan struct{})
	f.gate[name] = ch
	return ch
}

func (f *fakeGateway) called(name string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) enter(ctx context.Context, name string, id int64) error {
	f.mutex.Lock()
	f.calls[name]++
	gate := f.gate[name]
	err := f.fail[failKey(name, id)]
	if err == nil {
		err = f.fail[failKey(name, -1)]
	}
	f.mutex.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeGateway) addReport(spaceID campus.SpaceID, content string, created time.Time) campus.Report {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.lastID++
	r := campus.Report{Post: campus.Post{ID: f.lastID, Content: content, Created: created, Author: "Grade 1"}, SpaceID: spaceID}
	f.reports[spaceID] = append(campus.ReportList{r}, f.reports[spaceID]...)
	return r
}

func (f *fakeGateway) addReply(reportID campus.ReportID, content string, created time.Time) campus.Reply {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.lastID++
	r := campus.Reply{Post: campus.Post{ID: f.lastID, Content: content, Created: created, Author: "Faculty"}, ReportID: reportID}
	f.replies[reportID] = append(f.replies[reportID], r)
	return r
}

func (f *fakeGateway) count(kind campus.LikeKind, id int64) int {
	n := 0
	for k, v := range f.likes {
		if v && k.kind == kind && k.id == id {
			n++
		}
	}
	return n
}

func (f *fakeGateway) setLike(kind campus.LikeKind, id int64, user campus.UserID) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.likes[likeKey{kind, id, user}] = true
}

func (f *fakeGateway) GetSpaces(ctx context.Context) ([]campus.Space, error) {
	if err := f.enter(ctx, "GetSpaces", 0); err != nil {
		return nil, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]campus.Space{}, f.spaces...), nil
}

func (f *fakeGateway) GetReports(ctx context.Context, spaceID campus.SpaceID) (campus.ReportList, error) {
	if err := f.enter(ctx, "GetReports", spaceID); err != nil {
		return nil, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append(campus.ReportList{}, f.reports[spaceID]...), nil
}

func (f *fakeGateway) GetReplies(ctx context.Context, commentID campus.ReportID) (campus.ReplyList, error) {
	if err := f.enter(ctx, "GetReplies", commentID); err != nil {
		return nil, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append(campus.ReplyList{}, f.replies[commentID]...), nil
}

func (f *fakeGateway) getCount(ctx context.Context, name string, kind campus.LikeKind, id int64) (int, error) {
	if err := f.enter(ctx, name, id); err != nil {
		return 0, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.count(kind, id), nil
}

func (f *fakeGateway) hasLiked(ctx context.Context, name string, kind campus.LikeKind, id int64, user campus.UserID) (bool, error) {
	if err := f.enter(ctx, name, id); err != nil {
		return false, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.likes[likeKey{kind, id, user}], nil
}

func (f *fakeGateway) GetLikeCount(ctx context.Context, spaceID campus.SpaceID) (int, error) {
	return f.getCount(ctx, "GetLikeCount", campus.SpaceLike, spaceID)
}

func (f *fakeGateway) HasUserLiked(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID) (bool, error) {
	return f.hasLiked(ctx, "HasUserLiked", campus.SpaceLike, spaceID, userID)
}

func (f *fakeGateway) GetCommentLikeCount(ctx context.Context, commentID campus.ReportID) (int, error) {
	return f.getCount(ctx, "GetCommentLikeCount", campus.CommentLike, commentID)
}

func (f *fakeGateway) HasUserLikedComment(ctx context.Context, commentID campus.ReportID, userID campus.UserID) (bool, error) {
	return f.hasLiked(ctx, "HasUserLikedComment", campus.CommentLike, commentID, userID)
}

func (f *fakeGateway) GetReplyLikeCount(ctx context.Context, replyID campus.ReplyID) (int, error) {
	return f.getCount(ctx, "GetReplyLikeCount", campus.ReplyLike, replyID)
}

func (f *fakeGateway) HasUserLikedReply(ctx context.Context, replyID campus.ReplyID, userID campus.UserID) (bool, error) {
	return f.hasLiked(ctx, "HasUserLikedReply", campus.ReplyLike, replyID, userID)
}

func (f *fakeGateway) AddReport(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID, content string) (*campus.Report, error) {
	if err := f.enter(ctx, "AddReport", spaceID); err != nil {
		return nil, err
	}
	r := f.addReport(spaceID, content, time.Now())
	return &r, nil
}

func (f *fakeGateway) AddReply(ctx context.Context, commentID campus.ReportID, userID campus.UserID, content string) (*campus.Reply, error) {
	if err := f.enter(ctx, "AddReply", commentID); err != nil {
		return nil, err
	}
	r := f.addReply(commentID, content, time.Now())
	return &r, nil
}

func (f *fakeGateway) toggle(ctx context.Context, name string, kind campus.LikeKind, id int64, user campus.UserID) (campus.LikeState, error) {
	if err := f.enter(ctx, name, id); err != nil {
		return campus.LikeState{}, err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	k := likeKey{kind, id, user}
	f.likes[k] = !f.likes[k]
	if f.override != nil {
		return *f.override, nil
	}
	return campus.LikeState{Liked: f.likes[k], Count: f.count(kind, id)}, nil
}

func (f *fakeGateway) ToggleLike(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID) (campus.LikeState, error) {
	return f.toggle(ctx, "ToggleLike", campus.SpaceLike, spaceID, userID)
}

func (f *fakeGateway) ToggleCommentLike(ctx context.Context, commentID campus.ReportID, userID campus.UserID) (campus.LikeState, error) {
	return f.toggle(ctx, "ToggleCommentLike", campus.CommentLike, commentID, userID)
}

func (f *fakeGateway) ToggleReplyLike(ctx context.Context, replyID campus.ReplyID, userID campus.UserID) (campus.LikeState, error) {
	return f.toggle(ctx, "ToggleReplyLike", campus.ReplyLike, replyID, userID)
}
