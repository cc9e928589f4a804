package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: make(map[string]player.Player)}
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[item.Key] = item
	return nil
}

func (r *PlayerRepository) GetByKey(_ context.Context, key string) (player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[key]
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player=%s", usecase.ErrNotFound, key)
	}
	return item, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
