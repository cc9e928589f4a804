package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/tournament"
	qb "github.com/courtline/tennis-data-api/internal/platform/querybuilder"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type tournamentTableModel struct {
	TournamentKey string    `db:"tournament_key"`
	Name          string    `db:"name"`
	EventTypeKey  string    `db:"event_type_key"`
	Surface       string    `db:"surface"`
	Country       string    `db:"country"`
	Raw           string    `db:"raw"`
	FetchedAt     time.Time `db:"fetched_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

var tournamentSelectColumns = []string{
	"tournament_key",
	"name",
	"event_type_key",
	"surface",
	"country",
	"raw",
	"fetched_at",
	"updated_at",
}

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) Upsert(ctx context.Context, item tournament.Tournament) error {
	query, args, err := qb.InsertInto("tournaments").
		Columns(tournamentSelectColumns...).
		Values(item.Key, item.Name, item.EventTypeKey, item.Surface, item.Country, item.Raw, item.FetchedAt, item.UpdatedAt).
		Suffix(`ON CONFLICT (tournament_key) DO UPDATE SET
    name = EXCLUDED.name,
    event_type_key = EXCLUDED.event_type_key,
    surface = EXCLUDED.surface,
    country = EXCLUDED.country,
    raw = EXCLUDED.raw,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament %s: %w", item.Key, err)
	}
	return nil
}

func (r *TournamentRepository) GetByKey(ctx context.Context, key string) (tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentSelectColumns...).
		From("tournaments").
		Where(qb.Eq("tournament_key", key)).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", usecase.ErrNotFound, key)
		}
		return tournament.Tournament{}, fmt.Errorf("get tournament %s: %w", key, err)
	}
	return tournamentFromRow(row), nil
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentSelectColumns...).
		From("tournaments").
		OrderBy("tournament_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournamentFromRow(row))
	}
	return out, nil
}

func tournamentFromRow(row tournamentTableModel) tournament.Tournament {
	return tournament.Tournament{
		Key:          row.TournamentKey,
		Name:         row.Name,
		EventTypeKey: row.EventTypeKey,
		Surface:      row.Surface,
		Country:      row.Country,
		Meta: document.Meta{
			Raw:       row.Raw,
			FetchedAt: row.FetchedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}
