package mapview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aquilax/campusmap/campus"
)

const DefaultRefreshPeriod = 15 * time.Second

var ErrNotInitialized = errors.New("mapview: spaces not initialized")

// Refresher periodically reloads the selected space and the space list.
// Cycles are not serialized: a slow cycle can overlap the next tick.
type Refresher struct {
	m      *Map
	spaces *SpaceRepository
	period time.Duration

	mutex   sync.Mutex
	cancel  context.CancelFunc
	restart chan struct{}
	wg      sync.WaitGroup
}

func NewRefresher(m *Map, spaces *SpaceRepository, period time.Duration) *Refresher {
	if period <= 0 {
		period = DefaultRefreshPeriod
	}
	return &Refresher{m: m, spaces: spaces, period: period}
}

// Start launches the loop. The space list must have been initialized.
func (r *Refresher) Start(ctx context.Context) error {
	if !r.spaces.Initialized() {
		return ErrNotInitialized
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.restart = make(chan struct{}, 1)
	r.wg.Add(1)
	go r.run(ctx, r.restart)
	return nil
}

// Stop ends the loop and waits for running cycles to return.
func (r *Refresher) Stop() {
	r.mutex.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mutex.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Restart resets the timer, typically after the selection changed.
func (r *Refresher) Restart() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.cancel == nil {
		return
	}
	select {
	case r.restart <- struct{}{}:
	default:
	}
}

// Select changes the selection of the refreshed map and restarts the timer,
// so the next cycle comes a full period after the fresh load.
func (r *Refresher) Select(ctx context.Context, space campus.Space) bool {
	ok := r.m.Select(ctx, space)
	r.Restart()
	return ok
}

func (r *Refresher) Deselect() {
	r.m.Deselect()
	r.Restart()
}

func (r *Refresher) run(ctx context.Context, restart <-chan struct{}) {
	defer r.wg.Done()
	t := time.NewTicker(r.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-restart:
			t.Reset(r.period)
		case <-t.C:
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				r.cycle(ctx)
			}()
		}
	}
}

func (r *Refresher) cycle(ctx context.Context) {
	if s := r.m.Selected(); s != nil {
		if !r.m.Load(ctx, *s) {
			r.m.logger.Warn("refresh of selected space failed", "space", s.ID)
		}
	}
	if err := r.spaces.Refresh(ctx); err != nil {
		r.m.logger.Warn("refresh of spaces failed", "err", err)
	}
}
