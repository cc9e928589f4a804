package player

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Player) error
	GetByKey(ctx context.Context, key string) (Player, error)
	List(ctx context.Context) ([]Player, error)
}
