package event

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Event) error
	List(ctx context.Context) ([]Event, error)
}
