package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/event"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[string]event.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]event.Event)}
}

func (r *EventRepository) Upsert(_ context.Context, item event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[item.TypeKey] = item
	return nil
}

func (r *EventRepository) List(_ context.Context) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.events))
	for _, item := range r.events {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeKey < out[j].TypeKey })
	return out, nil
}
