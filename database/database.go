package database

import (
	"errors"

	"github.com/aquilax/campusmap/campus"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

type Database interface {
	Open(database, dsn string) error
	Migrate() error
	Ping() error
	Close() error

	GetUsers(count, offset int) ([]campus.User, error)
	GetTotalUsers() (int, error)
	GetUser(userID campus.UserID) (*campus.User, error)
	GetUserByEmail(email string) (*campus.User, error)
	AddUser(user *campus.User) error
	ClearFirstVisit(userID campus.UserID) error

	GetSpaces() ([]campus.Space, error)
	GetSpace(spaceID campus.SpaceID) (*campus.Space, error)
	AddSpace(space *campus.Space) (campus.SpaceID, error)

	GetReports(spaceID campus.SpaceID) (campus.ReportList, error)
	GetRecentReports(count int) (campus.ReportList, error)
	GetReport(reportID campus.ReportID) (*campus.Report, error)
	AddReport(report *campus.Report) (campus.ReportID, error)

	GetReplies(reportID campus.ReportID) (campus.ReplyList, error)
	GetReply(replyID campus.ReplyID) (*campus.Reply, error)
	AddReply(reply *campus.Reply) (campus.ReplyID, error)

	CountLikes(kind campus.LikeKind, subjectID int64) (int, error)
	HasLiked(kind campus.LikeKind, subjectID int64, userID campus.UserID) (bool, error)
	ToggleLike(kind campus.LikeKind, subjectID int64, userID campus.UserID) (campus.LikeState, error)
}
