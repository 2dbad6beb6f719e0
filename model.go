package main

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxContentLength = 1000
	bcryptCost       = 10
)

var studentEmail = regexp.MustCompile(`^\d{6}`)

type Model struct {
	db     database.Database
	ln     *Language
	locale *campus.Locale
}

func NewModel(db database.Database, ln *Language, locale *campus.Locale) *Model {
	return &Model{db: db, ln: ln, locale: locale}
}

func (m *Model) fail(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: m.ln.Lang(message)}
}

func (m *Model) annotate(p *campus.Post) {
	p.Author = m.locale.Author(p.UserType, p.Grade)
}

func (m *Model) annotateReports(rl campus.ReportList) campus.ReportList {
	if rl == nil {
		return campus.ReportList{}
	}
	for i := range rl {
		m.annotate(&rl[i].Post)
	}
	return rl
}

func (m *Model) annotateReplies(rl campus.ReplyList) campus.ReplyList {
	if rl == nil {
		return campus.ReplyList{}
	}
	for i := range rl {
		m.annotate(&rl[i].Post)
	}
	return rl
}

func (m *Model) ping() error {
	return m.db.Ping()
}

func (m *Model) getUsers(count, offset int) ([]campus.User, int, error) {
	users, err := m.db.GetUsers(count, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.db.GetTotalUsers()
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []campus.User{}
	}
	return users, total, nil
}

func (m *Model) getSpaces() ([]campus.Space, error) {
	spaces, err := m.db.GetSpaces()
	if spaces == nil && err == nil {
		spaces = []campus.Space{}
	}
	return spaces, err
}

func (m *Model) getSpace(spaceID campus.SpaceID) (*campus.Space, error) {
	s, err := m.db.GetSpace(spaceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, m.fail(http.StatusNotFound, "Space not found.")
	}
	return s, err
}

func (m *Model) getReports(spaceID campus.SpaceID) (campus.ReportList, error) {
	rl, err := m.db.GetReports(spaceID)
	if err != nil {
		return nil, err
	}
	return m.annotateReports(rl), nil
}

func (m *Model) getRecentReports(count int) (campus.ReportList, error) {
	rl, err := m.db.GetRecentReports(count)
	if err != nil {
		return nil, err
	}
	return m.annotateReports(rl), nil
}

func (m *Model) getReplies(reportID campus.ReportID) (campus.ReplyList, error) {
	rl, err := m.db.GetReplies(reportID)
	if err != nil {
		return nil, err
	}
	return m.annotateReplies(rl), nil
}

func (m *Model) countLikes(kind campus.LikeKind, subjectID int64) (int, error) {
	return m.db.CountLikes(kind, subjectID)
}

func (m *Model) hasLiked(kind campus.LikeKind, subjectID int64, userID campus.UserID) (bool, error) {
	return m.db.HasLiked(kind, subjectID, userID)
}

func (m *Model) toggleLike(kind campus.LikeKind, subjectID int64, userID campus.UserID) (campus.LikeState, error) {
	st, err := m.db.ToggleLike(kind, subjectID, userID)
	if err != nil {
		return st, fmt.Errorf("toggle %s like: %w", kind, err)
	}
	return st, nil
}

// validContent trims the text of a post and checks its length.
func (m *Model) validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", m.fail(http.StatusBadRequest, "Required data is missing.")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", m.fail(http.StatusBadRequest, "Content is too long.")
	}
	return content, nil
}

// addReport stores a comment and returns it as readers will see it.
func (m *Model) addReport(spaceID campus.SpaceID, userID campus.UserID, content string) (*campus.Report, error) {
	content, err := m.validContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := m.getSpace(spaceID); err != nil {
		return nil, err
	}
	id, err := m.db.AddReport(&campus.Report{
		Post:    campus.Post{UserID: userID, Content: content},
		SpaceID: spaceID,
	})
	if err != nil {
		return nil, err
	}
	r, err := m.db.GetReport(id)
	if err != nil {
		return nil, err
	}
	m.annotate(&r.Post)
	return r, nil
}

func (m *Model) getComment(reportID campus.ReportID) (*campus.Report, error) {
	r, err := m.db.GetReport(reportID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, m.fail(http.StatusNotFound, "Comment not found.")
	}
	return r, err
}

func (m *Model) addReply(reportID campus.ReportID, userID campus.UserID, content string) (*campus.Reply, error) {
	content, err := m.validContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := m.getComment(reportID); err != nil {
		return nil, err
	}
	id, err := m.db.AddReply(&campus.Reply{
		Post:     campus.Post{UserID: userID, Content: content},
		ReportID: reportID,
	})
	if err != nil {
		return nil, err
	}
	r, err := m.db.GetReply(id)
	if err != nil {
		return nil, err
	}
	m.annotate(&r.Post)
	return r, nil
}

// login checks the password against the stored bcrypt hash. Unknown users
// and wrong passwords give the same error.
func (m *Model) login(username, password string) (*campus.User, error) {
	invalid := m.fail(http.StatusOK, "Incorrect username or password.")
	if username == "" || password == "" {
		return nil, invalid
	}
	u, err := m.db.GetUser(username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return loginView(u), nil
}

// loginView is the part of the user record sent back on login. Students get
// their grade, class and number, everybody else their department.
func loginView(u *campus.User) *campus.User {
	v := &campus.User{
		ID:      u.ID,
		Type:    u.Type,
		Name:    u.Name,
		IsFirst: u.IsFirst,
		Created: u.Created,
	}
	if u.Type == campus.UserStudent {
		v.Grade = u.Grade
		v.Class = u.Class
		v.StudentNumber = u.StudentNumber
	} else {
		v.Department = u.Department
	}
	return v
}

type registration struct {
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Name       string      `json:"studentName"`
	Grade      looseInt    `json:"grade"`
	Class      looseInt    `json:"classNum"`
	Number     looseString `json:"studentNum"`
	Email      string      `json:"schoolEmail"`
	UserRole   string      `json:"userRole"`
	Type       string      `json:"type"`
	Department string      `json:"department"`
}

// userRole picks the role of a new account: the requested one, or one
// derived from the school email where student addresses start with six
// digits.
func userRole(requested, email string) string {
	if requested != "" {
		return requested
	}
	if email == "" {
		return campus.UserStudent
	}
	local, _, _ := strings.Cut(email, "@")
	if studentEmail.MatchString(local) {
		return campus.UserStudent
	}
	return campus.UserTeacher
}

func (m *Model) register(reg registration) (*campus.User, error) {
	requested := reg.UserRole
	if requested == "" {
		requested = reg.Type
	}
	role := userRole(requested, reg.Email)

	if reg.Username == "" || reg.Password == "" || reg.Name == "" {
		return nil, m.fail(http.StatusBadRequest, "Please fill in all required fields.")
	}
	if role == campus.UserStudent && (reg.Grade == 0 || reg.Class == 0 || reg.Number == "") {
		return nil, m.fail(http.StatusBadRequest, "Please enter all student information.")
	}
	if _, err := m.db.GetUser(reg.Username); err == nil {
		return nil, m.fail(http.StatusBadRequest, "This username is already taken.")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if reg.Email != "" {
		available, err := m.emailAvailable(reg.Email)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, m.fail(http.StatusBadRequest, "This email is already in use.")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &campus.User{
		ID:       reg.Username,
		Password: string(hash),
		Type:     role,
		Name:     reg.Name,
		Email:    reg.Email,
		IsFirst:  true,
	}
	if role != campus.UserTeacher {
		if reg.Grade != 0 {
			grade, class := int(reg.Grade), int(reg.Class)
			u.Grade, u.Class = &grade, &class
		}
		if reg.Number != "" {
			number := string(reg.Number)
			u.StudentNumber = &number
		}
	}
	if reg.Department != "" && role != campus.UserStudent {
		u.Department = &reg.Department
	}
	if err := m.db.AddUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Model) emailAvailable(email string) (bool, error) {
	_, err := m.db.GetUserByEmail(email)
	if errors.Is(err, database.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (m *Model) clearFirstVisit(userID campus.UserID) error {
	return m.db.ClearFirstVisit(userID)
}

func (m *Model) getUser(userID campus.UserID) (*campus.User, error) {
	u, err := m.db.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return loginView(u), nil
}
