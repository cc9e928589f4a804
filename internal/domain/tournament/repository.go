package tournament

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Tournament) error
	GetByKey(ctx context.Context, key string) (Tournament, error)
	List(ctx context.Context) ([]Tournament, error)
}
