package mapview

import (
	"context"
	"errors"
	"strings"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/gateway"
)

// SubmitError is returned when the gateway rejects a post. Message is ready
// to show to the user.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func (m *Map) submitError(fallback string, err error) error {
	var gerr *gateway.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return &SubmitError{Message: gerr.Message, Err: err}
	}
	return &SubmitError{Message: fallback, Err: err}
}

// SubmitComment posts a comment on spaceID. The stored comment is put at
// the top of the list. The draft is kept when posting fails.
func (m *Map) SubmitComment(ctx context.Context, spaceID campus.SpaceID, text string) (*campus.Report, error) {
	if m.userID == "" {
		return nil, ErrNotLoggedIn
	}
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, ErrEmptyContent
	}
	token := m.token()
	r, err := m.gw.AddReport(ctx, spaceID, m.userID, content)
	if err != nil {
		m.logger.Error("posting comment failed", "space", spaceID, "err", err)
		return nil, m.submitError("Failed to post the comment.", err)
	}
	r.RelativeTime = m.locale.RelativeTime(m.now(), r.Created)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.selection != token || m.view.Space == nil || m.view.Space.ID != spaceID {
		return r, nil
	}
	m.view.Comments = append(campus.ReportList{*r}, m.view.Comments...)
	m.view.CommentLikes[r.ID] = 0
	m.view.UserCommentLikes[r.ID] = false
	m.view.CommentReplies[r.ID] = campus.ReplyList{}
	m.view.CommentDraft = ""
	return r, nil
}

// SubmitReply posts a reply under commentID and appends it to the thread.
func (m *Map) SubmitReply(ctx context.Context, commentID campus.ReportID, text string) (*campus.Reply, error) {
	if m.userID == "" {
		return nil, ErrNotLoggedIn
	}
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, ErrEmptyContent
	}
	token := m.token()
	r, err := m.gw.AddReply(ctx, commentID, m.userID, content)
	if err != nil {
		m.logger.Error("posting reply failed", "comment", commentID, "err", err)
		return nil, m.submitError("Failed to post the reply.", err)
	}
	r.RelativeTime = m.locale.RelativeTime(m.now(), r.Created)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.selection != token {
		return r, nil
	}
	m.view.CommentReplies[commentID] = append(m.view.CommentReplies[commentID], *r)
	m.view.ReplyLikes[r.ID] = 0
	m.view.UserReplyLikes[r.ID] = false
	m.view.ReplyDraft = ""
	m.view.ReplyingTo = 0
	return r, nil
}

// SetReplyDraft updates the text of the open reply form.
func (m *Map) SetReplyDraft(text string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.view.ReplyDraft = text
}
