package rabbitmqtest

import (
	"context"
	"sync"

	"github.com/rescuerunner/runnerboard/internal/event"
)

type Emitted struct {
	Key   string
	Event *event.Event
}

type EventRecorder struct {
	mu     sync.Mutex
	events []Emitted

	// Err, when set, is returned from every EmitEvent call after recording.
	Err error
}

func NewEventRecorder() *EventRecorder {
	return new(EventRecorder)
}

func (r *EventRecorder) EmitEvent(ctx context.Context, key string, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Emitted{Key: key, Event: e})
	return r.Err
}

func (r *EventRecorder) Events() []Emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emitted(nil), r.events...)
}
