package mapview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aquilax/campusmap/campus"
)

// SpaceSource fetches the list of campus spaces.
type SpaceSource interface {
	GetSpaces(ctx context.Context) ([]campus.Space, error)
}

// SpaceRepository keeps the last known list of spaces. Until the first
// successful fetch it serves the default campus spaces.
type SpaceRepository struct {
	src    SpaceSource
	logger *slog.Logger

	mutex       sync.RWMutex
	spaces      []campus.Space
	initialized bool
}

func NewSpaceRepository(src SpaceSource, logger *slog.Logger) *SpaceRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SpaceRepository{src: src, logger: logger}
}

// Initialize loads the spaces once. On failure the defaults are installed
// and the error is returned; later calls are no-ops.
func (r *SpaceRepository) Initialize(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.initialized {
		return nil
	}
	r.initialized = true
	spaces, err := r.src.GetSpaces(ctx)
	if err != nil {
		r.logger.Warn("using default spaces", "err", err)
		r.spaces = campus.DefaultSpaces()
		return fmt.Errorf("initialize spaces: %w", err)
	}
	r.spaces = spaces
	return nil
}

// Refresh refetches the spaces. The previous list is kept on failure.
func (r *SpaceRepository) Refresh(ctx context.Context) error {
	spaces, err := r.src.GetSpaces(ctx)
	if err != nil {
		return fmt.Errorf("refresh spaces: %w", err)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.spaces = spaces
	r.initialized = true
	return nil
}

func (r *SpaceRepository) Initialized() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.initialized
}

// Get returns a copy of the current list.
func (r *SpaceRepository) Get() []campus.Space {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	spaces := r.spaces
	if !r.initialized {
		spaces = campus.DefaultSpaces()
	}
	result := make([]campus.Space, len(spaces))
	for i, s := range spaces {
		result[i] = s.Clone()
	}
	return result
}

// Find returns the space with id from the current list.
func (r *SpaceRepository) Find(id campus.SpaceID) (campus.Space, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, s := range r.spaces {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return campus.Space{}, false
}
