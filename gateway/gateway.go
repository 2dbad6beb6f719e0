// Package gateway is an HTTP client for the campusmap data API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aquilax/campusmap/campus"
	"github.com/hashicorp/go-retryablehttp"
)

const apiPath = "/api/database"

// Error is a failure reported by the server, either as success:false in the
// envelope or as a non-OK status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: status %d", e.Status)
	}
	return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	User    *campus.User    `json:"user"`
}

type Client struct {
	baseURL *url.URL
	http    *retryablehttp.Client
}

type Option func(*Client)

// WithRetryMax sets how many times a request failing with a transport
// error or a 5xx status is retried.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		c.http.RetryMax = n
	}
}

// WithLogger logs requests and retries to logger. A nil logger keeps the
// client silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.http.Logger = logger
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.HTTPClient = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.Logger = nil
	// hand the last response back instead of a generic "giving up" error
	hc.ErrorHandler = func(resp *http.Response, err error, _ int) (*http.Response, error) {
		if resp != nil {
			return resp, nil
		}
		return nil, err
	}
	c := &Client{baseURL: u, http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(req *retryablehttp.Request) (*envelope, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("gateway response: %w", err)
	}
	if !env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func (c *Client) get(ctx context.Context, query url.Values, out interface{}) error {
	u := c.baseURL.JoinPath(apiPath)
	u.RawQuery = query.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	env, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("gateway data: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body map[string]interface{}) (*envelope, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(apiPath).String(), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) postData(ctx context.Context, body map[string]interface{}, out interface{}) error {
	env, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("gateway data: %w", err)
	}
	return nil
}

func action(name string, params ...string) url.Values {
	v := url.Values{}
	v.Set("action", name)
	for i := 0; i+1 < len(params); i += 2 {
		v.Set(params[i], params[i+1])
	}
	return v
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

type countData struct {
	Count int `json:"count"`
}

type likedData struct {
	Liked bool `json:"liked"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*campus.User, error) {
	env, err := c.post(ctx, map[string]interface{}{
		"action":   "login",
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, &Error{Status: http.StatusOK, Message: "login response without user"}
	}
	return env.User, nil
}

func (c *Client) UpdateFirstTimeFlag(ctx context.Context, userID campus.UserID) error {
	_, err := c.post(ctx, map[string]interface{}{
		"action": "updateFirstTimeFlag",
		"userId": userID,
	})
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, action("test"), nil)
}

func (c *Client) GetSpaces(ctx context.Context) ([]campus.Space, error) {
	var spaces []campus.Space
	err := c.get(ctx, action("spaces"), &spaces)
	return spaces, err
}

func (c *Client) GetReports(ctx context.Context, spaceID campus.SpaceID) (campus.ReportList, error) {
	var rl campus.ReportList
	err := c.get(ctx, action("reports", "spaceId", id(spaceID)), &rl)
	return rl, err
}

func (c *Client) GetReplies(ctx context.Context, commentID campus.ReportID) (campus.ReplyList, error) {
	var rl campus.ReplyList
	err := c.get(ctx, action("replies", "commentId", id(commentID)), &rl)
	return rl, err
}

func (c *Client) GetLikeCount(ctx context.Context, spaceID campus.SpaceID) (int, error) {
	var d countData
	err := c.get(ctx, action("likes", "spaceId", id(spaceID)), &d)
	return d.Count, err
}

func (c *Client) HasUserLiked(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID) (bool, error) {
	var d likedData
	err := c.get(ctx, action("userLike", "spaceId", id(spaceID), "userId", userID), &d)
	return d.Liked, err
}

func (c *Client) GetCommentLikeCount(ctx context.Context, commentID campus.ReportID) (int, error) {
	var d countData
	err := c.get(ctx, action("commentLikes", "commentId", id(commentID)), &d)
	return d.Count, err
}

func (c *Client) HasUserLikedComment(ctx context.Context, commentID campus.ReportID, userID campus.UserID) (bool, error) {
	var d likedData
	err := c.get(ctx, action("userCommentLike", "commentId", id(commentID), "userId", userID), &d)
	return d.Liked, err
}

func (c *Client) GetReplyLikeCount(ctx context.Context, replyID campus.ReplyID) (int, error) {
	var d countData
	err := c.get(ctx, action("replyLikes", "replyId", id(replyID)), &d)
	return d.Count, err
}

func (c *Client) HasUserLikedReply(ctx context.Context, replyID campus.ReplyID, userID campus.UserID) (bool, error) {
	var d likedData
	err := c.get(ctx, action("userReplyLike", "replyId", id(replyID), "userId", userID), &d)
	return d.Liked, err
}

func (c *Client) AddReport(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID, content string) (*campus.Report, error) {
	var r campus.Report
	err := c.postData(ctx, map[string]interface{}{
		"action":  "addReport",
		"spaceId": spaceID,
		"userId":  userID,
		"content": content,
	}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) AddReply(ctx context.Context, commentID campus.ReportID, userID campus.UserID, content string) (*campus.Reply, error) {
	var r campus.Reply
	err := c.postData(ctx, map[string]interface{}{
		"action":    "addReply",
		"commentId": commentID,
		"userId":    userID,
		"content":   content,
	}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) toggle(ctx context.Context, name, param string, subjectID int64, userID campus.UserID) (campus.LikeState, error) {
	var state campus.LikeState
	err := c.postData(ctx, map[string]interface{}{
		"action": name,
		param:    subjectID,
		"userId": userID,
	}, &state)
	return state, err
}

func (c *Client) ToggleLike(ctx context.Context, spaceID campus.SpaceID, userID campus.UserID) (campus.LikeState, error) {
	return c.toggle(ctx, "toggleLike", "spaceId", spaceID, userID)
}

func (c *Client) ToggleCommentLike(ctx context.Context, commentID campus.ReportID, userID campus.UserID) (campus.LikeState, error) {
	return c.toggle(ctx, "toggleCommentLike", "commentId", commentID, userID)
}

func (c *Client) ToggleReplyLike(ctx context.Context, replyID campus.ReplyID, userID campus.UserID) (campus.LikeState, error) {
	return c.toggle(ctx, "toggleReplyLike", "replyId", replyID, userID)
}
