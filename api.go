package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aquilax/campusmap/campus"
)

const maxBodySize = 1 << 20

// looseInt accepts both JSON numbers and numeric strings, as sent by form
// based clients.
type looseInt int64

func (n *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*n = looseInt(v)
	return nil
}

type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	*s = looseString(b)
	return nil
}

type actionRequest struct {
	Action    string   `json:"action"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	SpaceID   looseInt `json:"spaceId"`
	CommentID looseInt `json:"commentId"`
	ReplyID   looseInt `json:"replyId"`
	UserID    string   `json:"userId"`
	Content   string   `json:"content"`
}

type countData struct {
	Count int `json:"count"`
}

type likedData struct {
	Liked bool `json:"liked"`
}

func getPageNumber(pageStr string) int {
	page := 1
	var err error
	if len(pageStr) != 0 {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			slog.Debug("not a valid page number", "page", pageStr)
			page = 1
		}
	}
	return page - 1
}

func queryID(q url.Values, key string) (int64, bool) {
	n, err := strconv.ParseInt(q.Get(key), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// readBody decodes the JSON body into each of out and returns the raw bytes.
func (l *CampusMap) readBody(w http.ResponseWriter, r *http.Request, out ...interface{}) error {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return &HTTPError{Err: err, Code: http.StatusBadRequest, Message: l.ln.Lang("Invalid request format.")}
	}
	for _, o := range out {
		if err := json.Unmarshal(b, o); err != nil {
			return l.fail(http.StatusBadRequest, "Invalid request format.")
		}
	}
	return nil
}

func (l *CampusMap) databaseGetHandler(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	switch q.Get("action") {
	case "users":
		page := getPageNumber(q.Get("page"))
		users, total, err := l.m.getUsers(itemsPerPage, page*itemsPerPage)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data:    users,
			Pages:   paginate("users", page+1, total, itemsPerPage),
		})

	case "spaces":
		spaces, err := l.m.getSpaces()
		if err != nil {
			return err
		}
		return writeOK(w, spaces)

	case "test":
		if err := l.m.ping(); err != nil {
			return &HTTPError{Err: err, Code: http.StatusInternalServerError, Message: l.ln.Lang("Database connection failed.")}
		}
		return writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Message: l.ln.Lang("Database connection succeeded."),
			Data:    []map[string]int{{"connected": 1}},
		})

	case "reports":
		spaceID, ok := queryID(q, "spaceId")
		if !ok {
			return l.fail(http.StatusBadRequest, "Space ID is required.")
		}
		rl, err := l.m.getReports(spaceID)
		if err != nil {
			return err
		}
		return writeOK(w, rl)

	case "replies":
		commentID, ok := queryID(q, "commentId")
		if !ok {
			return l.fail(http.StatusBadRequest, "commentId is required.")
		}
		rl, err := l.m.getReplies(commentID)
		if err != nil {
			return err
		}
		return writeOK(w, rl)

	case "likes":
		return l.likeCount(w, q, campus.SpaceLike, "spaceId", "Space ID is required.")
	case "commentLikes":
		return l.likeCount(w, q, campus.CommentLike, "commentId", "commentId is required.")
	case "replyLikes":
		return l.likeCount(w, q, campus.ReplyLike, "replyId", "replyId is required.")

	case "userLike":
		return l.userLiked(w, q, campus.SpaceLike, "spaceId", "spaceId and userId are required.")
	case "userCommentLike":
		return l.userLiked(w, q, campus.CommentLike, "commentId", "commentId and userId are required.")
	case "userReplyLike":
		return l.userLiked(w, q, campus.ReplyLike, "replyId", "replyId and userId are required.")
	}
	return l.fail(http.StatusBadRequest, "Invalid action.")
}

func (l *CampusMap) likeCount(w http.ResponseWriter, q url.Values, kind campus.LikeKind, param, missing string) error {
	id, ok := queryID(q, param)
	if !ok {
		return l.fail(http.StatusBadRequest, missing)
	}
	n, err := l.m.countLikes(kind, id)
	if err != nil {
		return err
	}
	return writeOK(w, countData{Count: n})
}

func (l *CampusMap) userLiked(w http.ResponseWriter, q url.Values, kind campus.LikeKind, param, missing string) error {
	id, ok := queryID(q, param)
	userID := q.Get("userId")
	if !ok || userID == "" {
		return l.fail(http.StatusBadRequest, missing)
	}
	liked, err := l.m.hasLiked(kind, id, userID)
	if err != nil {
		return err
	}
	return writeOK(w, likedData{Liked: liked})
}

func (l *CampusMap) databasePostHandler(w http.ResponseWriter, r *http.Request) error {
	var req actionRequest
	var reg registration
	if err := l.readBody(w, r, &req, &reg); err != nil {
		return err
	}
	switch req.Action {
	case "login":
		return l.login(w, r, req.Username, req.Password)
	case "register":
		return l.register(w, reg)
	case "addReport":
		return l.addReport(w, req)
	case "addReply":
		return l.addReply(w, req)
	case "toggleLike":
		return l.toggle(w, campus.SpaceLike, int64(req.SpaceID), req.UserID, "spaceId and userId are required.")
	case "toggleCommentLike":
		return l.toggle(w, campus.CommentLike, int64(req.CommentID), req.UserID, "commentId and userId are required.")
	case "toggleReplyLike":
		return l.toggle(w, campus.ReplyLike, int64(req.ReplyID), req.UserID, "replyId and userId are required.")
	case "updateFirstTimeFlag":
		if req.UserID == "" {
			return l.fail(http.StatusBadRequest, "User ID is required.")
		}
		if err := l.m.clearFirstVisit(req.UserID); err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("First visit flag updated.")})
	}
	return l.fail(http.StatusBadRequest, "Invalid action.")
}

func (l *CampusMap) login(w http.ResponseWriter, r *http.Request, username, password string) error {
	u, err := l.m.login(username, password)
	if err != nil {
		logins.WithLabelValues("failed").Inc()
		return err
	}
	logins.WithLabelValues("ok").Inc()
	sess, _ := l.sessions.Get(r, sessionName)
	sess.Values[sessionUserID] = u.ID
	if err := sess.Save(r, w); err != nil {
		return err
	}
	l.logger.Info("login", "user", u.ID)
	return writeJSON(w, http.StatusOK, envelope{Success: true, User: u})
}

func (l *CampusMap) register(w http.ResponseWriter, reg registration) error {
	u, err := l.m.register(reg)
	if err != nil {
		return err
	}
	l.logger.Info("registered user", "user", u.ID, "type", u.Type)
	return writeJSON(w, http.StatusCreated, envelope{Success: true, Message: l.ln.Lang("Registration completed.")})
}

// checkPost validates a new post and checks that its subject exists before
// it reaches the spam guard, so rejected posts do not use up the posting
// window.
func (l *CampusMap) checkPost(w http.ResponseWriter, subjectID int64, userID campus.UserID, content string, exists func() error) error {
	if subjectID == 0 || userID == "" || content == "" {
		return l.fail(http.StatusBadRequest, "Required data is missing.")
	}
	if _, err := l.m.validContent(content); err != nil {
		return err
	}
	if err := exists(); err != nil {
		return err
	}
	if wait := l.sg.Wait(userID); wait > 0 {
		postsBlocked.Inc()
		w.Header().Set("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
		return l.fail(http.StatusTooManyRequests, "Please wait before posting again.")
	}
	return nil
}

func (l *CampusMap) addReport(w http.ResponseWriter, req actionRequest) error {
	spaceID := int64(req.SpaceID)
	err := l.checkPost(w, spaceID, req.UserID, req.Content, func() error {
		_, err := l.m.getSpace(spaceID)
		return err
	})
	if err != nil {
		return err
	}
	report, err := l.m.addReport(spaceID, req.UserID, req.Content)
	if err != nil {
		l.sg.Release(req.UserID)
		return err
	}
	postsCreated.WithLabelValues("comment").Inc()
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("Comment added."), Data: report})
}

func (l *CampusMap) addReply(w http.ResponseWriter, req actionRequest) error {
	commentID := int64(req.CommentID)
	err := l.checkPost(w, commentID, req.UserID, req.Content, func() error {
		_, err := l.m.getComment(commentID)
		return err
	})
	if err != nil {
		return err
	}
	reply, err := l.m.addReply(commentID, req.UserID, req.Content)
	if err != nil {
		l.sg.Release(req.UserID)
		return err
	}
	postsCreated.WithLabelValues("reply").Inc()
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("Reply added."), Data: reply})
}

func (l *CampusMap) toggle(w http.ResponseWriter, kind campus.LikeKind, subjectID int64, userID campus.UserID, missing string) error {
	if subjectID <= 0 || userID == "" {
		return l.fail(http.StatusBadRequest, missing)
	}
	st, err := l.m.toggleLike(kind, subjectID, userID)
	if err != nil {
		return err
	}
	likeToggles.WithLabelValues(kind.String(), strconv.FormatBool(st.Liked)).Inc()
	return writeOK(w, st)
}
