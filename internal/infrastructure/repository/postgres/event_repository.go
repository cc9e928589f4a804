package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/event"
	qb "github.com/courtline/tennis-data-api/internal/platform/querybuilder"
)

type eventTableModel struct {
	EventTypeKey string    `db:"event_type_key"`
	Name         string    `db:"name"`
	Raw          string    `db:"raw"`
	FetchedAt    time.Time `db:"fetched_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var eventSelectColumns = []string{
	"event_type_key",
	"name",
	"raw",
	"fetched_at",
	"updated_at",
}

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Upsert(ctx context.Context, item event.Event) error {
	query, args, err := qb.InsertInto("events").
		Columns(eventSelectColumns...).
		Values(item.TypeKey, item.Name, item.Raw, item.FetchedAt, item.UpdatedAt).
		Suffix(`ON CONFLICT (event_type_key) DO UPDATE SET
    name = EXCLUDED.name,
    raw = EXCLUDED.raw,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert event %s: %w", item.TypeKey, err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context) ([]event.Event, error) {
	query, args, err := qb.Select(eventSelectColumns...).
		From("events").
		OrderBy("event_type_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

func eventFromRow(row eventTableModel) event.Event {
	return event.Event{
		TypeKey: row.EventTypeKey,
		Name:    row.Name,
		Meta: document.Meta{
			Raw:       row.Raw,
			FetchedAt: row.FetchedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}
