package cached

import (
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/database"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSpaceTTL keeps cached spaces shorter than a client refresh period,
// so spaces created out of band show up on the next poll.
const DefaultSpaceTTL = 10 * time.Second

const (
	spaceListKey  = "all"
	maxSpaceCache = 1024
)

type GetUserCache map[campus.UserID]*campus.User

// Cached wraps a database and keeps the space list and user lookups in
// memory. Spaces expire after the space TTL and are cleared by writes made
// through the cache. Like counts, comments and replies always go to the
// wrapped database.
type Cached struct {
	database.Database
	spaces     *expirable.LRU[string, []campus.Space]
	spaceCache *expirable.LRU[campus.SpaceID, campus.Space]

	mutex     sync.RWMutex
	userCache GetUserCache
}

func New(db database.Database) *Cached {
	return NewWithTTL(db, DefaultSpaceTTL)
}

func NewWithTTL(db database.Database, spaceTTL time.Duration) *Cached {
	return &Cached{
		Database:   db,
		spaces:     expirable.NewLRU[string, []campus.Space](1, nil, spaceTTL),
		spaceCache: expirable.NewLRU[campus.SpaceID, campus.Space](maxSpaceCache, nil, spaceTTL),
		userCache:  make(GetUserCache),
	}
}

func (m *Cached) clearSpaces() {
	m.spaces.Purge()
	m.spaceCache.Purge()
}

func (m *Cached) clearUser(userID campus.UserID) {
	m.mutex.Lock()
	delete(m.userCache, userID)
	m.mutex.Unlock()
}

func cloneSpaces(spaces []campus.Space) []campus.Space {
	result := make([]campus.Space, len(spaces))
	for i, s := range spaces {
		result[i] = s.Clone()
	}
	return result
}

func (m *Cached) GetSpaces() ([]campus.Space, error) {
	if spaces, found := m.spaces.Get(spaceListKey); found {
		return cloneSpaces(spaces), nil
	}
	result, err := m.Database.GetSpaces()
	if err != nil {
		return result, err
	}
	if result == nil {
		result = []campus.Space{}
	}
	m.spaces.Add(spaceListKey, cloneSpaces(result))
	return result, nil
}

func (m *Cached) GetSpace(spaceID campus.SpaceID) (*campus.Space, error) {
	if s, found := m.spaceCache.Get(spaceID); found {
		c := s.Clone()
		return &c, nil
	}
	result, err := m.Database.GetSpace(spaceID)
	if err == nil {
		m.spaceCache.Add(spaceID, result.Clone())
	}
	return result, err
}

func (m *Cached) AddSpace(space *campus.Space) (campus.SpaceID, error) {
	result, err := m.Database.AddSpace(space)
	if err == nil {
		m.clearSpaces()
	}
	return result, err
}

func (m *Cached) GetUser(userID campus.UserID) (*campus.User, error) {
	m.mutex.RLock()
	u, found := m.userCache[userID]
	m.mutex.RUnlock()
	if found {
		c := *u
		return &c, nil
	}
	result, err := m.Database.GetUser(userID)
	if err == nil {
		c := *result
		m.mutex.Lock()
		m.userCache[userID] = &c
		m.mutex.Unlock()
	}
	return result, err
}

func (m *Cached) AddUser(user *campus.User) error {
	err := m.Database.AddUser(user)
	if err == nil {
		m.clearUser(user.ID)
	}
	return err
}

func (m *Cached) ClearFirstVisit(userID campus.UserID) error {
	err := m.Database.ClearFirstVisit(userID)
	if err == nil {
		m.clearUser(userID)
	}
	return err
}
