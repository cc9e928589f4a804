package fixture

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Fixture) error
	GetByEventKey(ctx context.Context, eventKey string) (Fixture, error)
	ListByDateRange(ctx context.Context, startDay, endDay string) ([]Fixture, error)
	ListByTournament(ctx context.Context, tournamentKey string) ([]Fixture, error)
	ListByPlayer(ctx context.Context, playerKey string) ([]Fixture, error)
	// DistinctPlayerKeys lists every player key referenced by any
	// stored fixture, on either side of the match.
	DistinctPlayerKeys(ctx context.Context) ([]string, error)
}
