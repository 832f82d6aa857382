package mock

import (
	"context"
	"sync"

	"github.com/opst/knitlabel/pkg/telemetry"
)

type Posted struct {
	UserId string
	Event  telemetry.Event
}

// Sink records posted events.
type Sink struct {
	mu     sync.Mutex
	posted []Posted
}

var _ telemetry.Sink = &Sink{}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Post(_ context.Context, userId string, event telemetry.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted = append(s.posted, Posted{UserId: userId, Event: event})
}

func (s *Sink) Posted() []Posted {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Posted, len(s.posted))
	copy(out, s.posted)
	return out
}
