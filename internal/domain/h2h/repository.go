package h2h

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Record) error
	GetByPlayers(ctx context.Context, playerA, playerB string) (Record, error)
}
