package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type OddsRepository struct {
	mu          sync.RWMutex
	oddsByMatch map[string]odds.Odds
}

func NewOddsRepository() *OddsRepository {
	return &OddsRepository{oddsByMatch: make(map[string]odds.Odds)}
}

func (r *OddsRepository) Upsert(_ context.Context, item odds.Odds) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.oddsByMatch[item.MatchKey] = item
	return nil
}

func (r *OddsRepository) GetByMatchKey(_ context.Context, matchKey string) (odds.Odds, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.oddsByMatch[matchKey]
	if !ok {
		return odds.Odds{}, fmt.Errorf("%w: odds for match=%s", usecase.ErrNotFound, matchKey)
	}
	return item, nil
}

func (r *OddsRepository) ExistsForMatch(_ context.Context, matchKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.oddsByMatch[matchKey]
	return ok, nil
}
