package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/tournament"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type TournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[string]tournament.Tournament
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{tournaments: make(map[string]tournament.Tournament)}
}

func (r *TournamentRepository) Upsert(_ context.Context, item tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tournaments[item.Key] = item
	return nil
}

func (r *TournamentRepository) GetByKey(_ context.Context, key string) (tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.tournaments[key]
	if !ok {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", usecase.ErrNotFound, key)
	}
	return item, nil
}

func (r *TournamentRepository) List(_ context.Context) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.tournaments))
	for _, item := range r.tournaments {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
