package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{fixtures: make(map[string]fixture.Fixture)}
}

func (r *FixtureRepository) Upsert(_ context.Context, item fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fixtures[item.EventKey] = item
	return nil
}

func (r *FixtureRepository) GetByEventKey(_ context.Context, eventKey string) (fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.fixtures[eventKey]
	if !ok {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", usecase.ErrNotFound, eventKey)
	}
	return item, nil
}

func (r *FixtureRepository) ListByDateRange(_ context.Context, startDay, endDay string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(item fixture.Fixture) bool {
		return item.EventDate != "" && item.EventDate >= startDay && item.EventDate <= endDay
	}), nil
}

func (r *FixtureRepository) ListByTournament(_ context.Context, tournamentKey string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(item fixture.Fixture) bool {
		return item.TournamentKey == tournamentKey
	}), nil
}

func (r *FixtureRepository) ListByPlayer(_ context.Context, playerKey string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(item fixture.Fixture) bool {
		return item.FirstPlayerKey == playerKey || item.SecondPlayerKey == playerKey
	}), nil
}

func (r *FixtureRepository) DistinctPlayerKeys(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, item := range r.fixtures {
		for _, key := range item.PlayerKeys() {
			if key != "" {
				seen[key] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

// collect assumes the caller holds at least a read lock.
func (r *FixtureRepository) collect(keep func(fixture.Fixture) bool) []fixture.Fixture {
	out := make([]fixture.Fixture, 0)
	for _, item := range r.fixtures {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventKey < out[j].EventKey })
	return out
}
