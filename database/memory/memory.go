package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
)

type likeKey struct {
	kind    campus.LikeKind
	subject int64
	user    campus.UserID
}

// Memory keeps everything in process. It is used by tests and demo runs.
type Memory struct {
	mutex   sync.RWMutex
	users   []campus.User
	spaces  []campus.Space
	reports campus.ReportList
	replies campus.ReplyList
	likes   map[likeKey]struct{}
	lastID  int64
}

func New() *Memory {
	return &Memory{
		likes: make(map[likeKey]struct{}),
	}
}

func min(value int, values ...int) int {
	for _, v := range values {
		if v < value {
			value = v
		}
	}
	return value
}

func find[T any](list []T, filter func(item T) bool) []T {
	var result []T
	for _, item := range list {
		if filter(item) {
			result = append(result, item)
		}
	}
	return result
}

func (m *Memory) nextID() int64 {
	m.lastID++
	return m.lastID
}

func (m *Memory) Open(database, dsn string) error {
	return nil
}

func (m *Memory) Migrate() error {
	return nil
}

func (m *Memory) Ping() error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) GetUsers(count, offset int) ([]campus.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if offset >= len(m.users) {
		return nil, nil
	}
	result := make([]campus.User, min(len(m.users), offset+count)-offset)
	copy(result, m.users[offset:])
	return result, nil
}

func (m *Memory) GetTotalUsers() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.users), nil
}

func (m *Memory) GetUser(userID campus.UserID) (*campus.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := find(m.users, func(u campus.User) bool { return u.ID == userID })
	if len(found) == 0 {
		return nil, database.ErrNotFound
	}
	return &found[0], nil
}

func (m *Memory) GetUserByEmail(email string) (*campus.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := find(m.users, func(u campus.User) bool { return u.Email != "" && u.Email == email })
	if len(found) == 0 {
		return nil, database.ErrNotFound
	}
	return &found[0], nil
}

func (m *Memory) AddUser(user *campus.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if user.Created.IsZero() {
		user.Created = time.Now().UTC()
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *Memory) ClearFirstVisit(userID campus.UserID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].IsFirst = false
		}
	}
	return nil
}

func (m *Memory) GetSpaces() ([]campus.Space, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	result := make([]campus.Space, len(m.spaces))
	for i, s := range m.spaces {
		result[i] = s.Clone()
	}
	return result, nil
}

func (m *Memory) GetSpace(spaceID campus.SpaceID) (*campus.Space, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, s := range m.spaces {
		if s.ID == spaceID {
			c := s.Clone()
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *Memory) AddSpace(space *campus.Space) (campus.SpaceID, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	space.ID = m.nextID()
	m.spaces = append(m.spaces, space.Clone())
	return space.ID, nil
}

// author fills the joined user columns the SQL stores get from users.
func (m *Memory) author(p *campus.Post) {
	p.UserType = ""
	p.Grade = nil
	for _, u := range m.users {
		if u.ID == p.UserID {
			p.UserType = u.Type
			p.Grade = u.Grade
			return
		}
	}
}

func (m *Memory) GetReports(spaceID campus.SpaceID) (campus.ReportList, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := find(m.reports, func(r campus.Report) bool { return r.SpaceID == spaceID })
	return m.newestFirst(found), nil
}

func (m *Memory) GetRecentReports(count int) (campus.ReportList, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := m.newestFirst(append(campus.ReportList(nil), m.reports...))
	return found[:min(len(found), count)], nil
}

func (m *Memory) newestFirst(rl campus.ReportList) campus.ReportList {
	for i := range rl {
		m.author(&rl[i].Post)
	}
	sort.SliceStable(rl, func(i, j int) bool {
		if rl[i].Created.Equal(rl[j].Created) {
			return rl[i].ID > rl[j].ID
		}
		return rl[i].Created.After(rl[j].Created)
	})
	return rl
}

func (m *Memory) GetReport(reportID campus.ReportID) (*campus.Report, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := find(m.reports, func(r campus.Report) bool { return r.ID == reportID })
	if len(found) == 0 {
		return nil, database.ErrNotFound
	}
	m.author(&found[0].Post)
	return &found[0], nil
}

func (m *Memory) AddReport(report *campus.Report) (campus.ReportID, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	report.ID = m.nextID()
	if report.Created.IsZero() {
		report.Created = time.Now().UTC()
	}
	m.reports = append(m.reports, *report)
	return report.ID, nil
}

func (m *Memory) GetReplies(reportID campus.ReportID) (campus.ReplyList, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := find(m.replies, func(r campus.Reply) bool { return r.ReportID == reportID })
	for i := range found {
		m.author(&found[i].Post)
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Created.Before(found[j].Created)
	})
	return found, nil
}

func (m *Memory) GetReply(replyID campus.ReplyID) (*campus.Reply, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	found := find(m.replies, func(r campus.Reply) bool { return r.ID == replyID })
	if len(found) == 0 {
		return nil, database.ErrNotFound
	}
	m.author(&found[0].Post)
	return &found[0], nil
}

func (m *Memory) AddReply(reply *campus.Reply) (campus.ReplyID, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	reply.ID = m.nextID()
	if reply.Created.IsZero() {
		reply.Created = time.Now().UTC()
	}
	m.replies = append(m.replies, *reply)
	return reply.ID, nil
}

func (m *Memory) countLikes(kind campus.LikeKind, subjectID int64) int {
	count := 0
	for k := range m.likes {
		if k.kind == kind && k.subject == subjectID {
			count++
		}
	}
	return count
}

func (m *Memory) CountLikes(kind campus.LikeKind, subjectID int64) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.countLikes(kind, subjectID), nil
}

func (m *Memory) HasLiked(kind campus.LikeKind, subjectID int64, userID campus.UserID) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, found := m.likes[likeKey{kind, subjectID, userID}]
	return found, nil
}

func (m *Memory) ToggleLike(kind campus.LikeKind, subjectID int64, userID campus.UserID) (campus.LikeState, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key := likeKey{kind, subjectID, userID}
	_, found := m.likes[key]
	if found {
		delete(m.likes, key)
	} else {
		m.likes[key] = struct{}{}
	}
	return campus.LikeState{Liked: !found, Count: m.countLikes(kind, subjectID)}, nil
}
