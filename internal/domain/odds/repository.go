package odds

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Odds) error
	GetByMatchKey(ctx context.Context, matchKey string) (Odds, error)
	ExistsForMatch(ctx context.Context, matchKey string) (bool, error)
}
