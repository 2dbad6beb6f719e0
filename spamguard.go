package main

import (
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
)

// SpamGuard lets each user post once per window.
type SpamGuard struct {
	window time.Duration
	now    func() time.Time

	mutex sync.Mutex
	until map[campus.UserID]time.Time
}

func NewSpamGuard(window time.Duration) *SpamGuard {
	return &SpamGuard{
		window: window,
		now:    time.Now,
		until:  make(map[campus.UserID]time.Time),
	}
}

// Wait reserves a post for userID. It returns zero when the post may go
// ahead and otherwise how long the user still has to wait.
func (sg *SpamGuard) Wait(userID campus.UserID) time.Duration {
	if sg.window <= 0 {
		return 0
	}
	now := sg.now()
	sg.mutex.Lock()
	defer sg.mutex.Unlock()
	sg.expire(now)
	if until, blocked := sg.until[userID]; blocked {
		return until.Sub(now)
	}
	sg.until[userID] = now.Add(sg.window)
	return 0
}

// Release gives back the reservation of a post that was not stored.
func (sg *SpamGuard) Release(userID campus.UserID) {
	sg.mutex.Lock()
	defer sg.mutex.Unlock()
	delete(sg.until, userID)
}

func (sg *SpamGuard) expire(now time.Time) {
	for id, until := range sg.until {
		if !until.After(now) {
			delete(sg.until, id)
		}
	}
}
