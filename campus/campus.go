package campus

import (
	"time"
)

type SpaceID = int64
type ReportID = int64
type ReplyID = int64
type UserID = string

const (
	UserStudent = "student"
	UserTeacher = "teacher"
	UserStaff   = "staff"
)

// Point is a marker position in map tile coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Space is a location on the campus map. Coordinates are keyed by zoom
// level (0, 1, 2).
type Space struct {
	ID          SpaceID       `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Coordinates map[int]Point `json:"coordinates"`
}

type User struct {
	ID            UserID    `db:"id" json:"id"`
	Password      string    `db:"password" json:"-"`
	Type          string    `db:"type" json:"type"`
	Name          string    `db:"name" json:"name"`
	Grade         *int      `db:"grade" json:"grade,omitempty"`
	Class         *int      `db:"class" json:"class,omitempty"`
	Department    *string   `db:"department" json:"department,omitempty"`
	Email         string    `db:"email" json:"email,omitempty"`
	StudentNumber *string   `db:"column_name" json:"column_name,omitempty"`
	IsFirst       bool      `db:"is_first" json:"isFirst"`
	Created       time.Time `db:"created_at" json:"createdAt"`
}

// Post holds the fields shared by comments and replies. The poster's id and
// role only travel inside the server; clients see Author.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       UserID    `db:"user_id" json:"-"`
	Content      string    `db:"content" json:"content"`
	Created      time.Time `db:"created_at" json:"timestamp"`
	UserType     string    `db:"user_type" json:"-"`
	Grade        *int      `db:"grade" json:"-"`
	Author       string    `db:"-" json:"author"`
	RelativeTime string    `db:"-" json:"relativeTime,omitempty"`
}

// Report is a comment left on a space.
type Report struct {
	Post
	SpaceID SpaceID `db:"space_id" json:"spaceId"`
}

type Reply struct {
	Post
	ReportID ReportID `db:"report_id" json:"commentId"`
}

type ReportList []Report
type ReplyList []Reply

// LikeState is the authoritative result of a toggle.
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

type LikeKind int

const (
	SpaceLike LikeKind = iota
	CommentLike
	ReplyLike
)

func (k LikeKind) String() string {
	switch k {
	case SpaceLike:
		return "space"
	case CommentLike:
		return "comment"
	case ReplyLike:
		return "reply"
	}
	return "unknown"
}
