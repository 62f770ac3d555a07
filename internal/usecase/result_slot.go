package usecase

import (
	"sync"

	"horde-image-client/internal/domain/model"
)

// ResultSlot holds the single displayable Result. Publishing a new result
// releases the previous one's binary handle first, so at most one live handle
// exists at any time.
type ResultSlot struct {
	mu  sync.Mutex
	cur *model.Result
}

func NewResultSlot() *ResultSlot {
	return &ResultSlot{}
}

// Publish installs r, releasing the previously held result.
func (s *ResultSlot) Publish(r *model.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.Release()
	}
	s.cur = r
}

// Current returns the held result, nil when none.
func (s *ResultSlot) Current() *model.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Release frees the held result without replacing it. Safe to call when the
// slot is empty.
func (s *ResultSlot) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
}
