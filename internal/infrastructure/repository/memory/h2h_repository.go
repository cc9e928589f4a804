package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/h2h"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type H2HRepository struct {
	mu      sync.RWMutex
	records map[string]h2h.Record
}

func NewH2HRepository() *H2HRepository {
	return &H2HRepository{records: make(map[string]h2h.Record)}
}

func (r *H2HRepository) Upsert(_ context.Context, item h2h.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[item.Key] = item
	return nil
}

func (r *H2HRepository) GetByPlayers(_ context.Context, playerA, playerB string) (h2h.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := h2h.CompositeKey(playerA, playerB)
	item, ok := r.records[key]
	if !ok {
		return h2h.Record{}, fmt.Errorf("%w: head-to-head=%s", usecase.ErrNotFound, key)
	}
	return item, nil
}
