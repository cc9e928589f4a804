package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	qb "github.com/courtline/tennis-data-api/internal/platform/querybuilder"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type oddsTableModel struct {
	Key           string    `db:"key"`
	MatchKey      string    `db:"match_key"`
	TournamentKey string    `db:"tournament_key"`
	EventDate     string    `db:"event_date"`
	Raw           string    `db:"raw"`
	FetchedAt     time.Time `db:"fetched_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

var oddsSelectColumns = []string{
	"key",
	"match_key",
	"tournament_key",
	"event_date",
	"raw",
	"fetched_at",
	"updated_at",
}

type OddsRepository struct {
	db *sqlx.DB
}

func NewOddsRepository(db *sqlx.DB) *OddsRepository {
	return &OddsRepository{db: db}
}

func (r *OddsRepository) Upsert(ctx context.Context, item odds.Odds) error {
	query, args, err := qb.InsertInto("odds").
		Columns(oddsSelectColumns...).
		Values(item.Key, item.MatchKey, item.TournamentKey, item.EventDate, item.Raw, item.FetchedAt, item.UpdatedAt).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
    match_key = EXCLUDED.match_key,
    tournament_key = EXCLUDED.tournament_key,
    event_date = EXCLUDED.event_date,
    raw = EXCLUDED.raw,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert odds query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert odds %s: %w", item.Key, err)
	}
	return nil
}

func (r *OddsRepository) GetByMatchKey(ctx context.Context, matchKey string) (odds.Odds, error) {
	query, args, err := qb.Select(oddsSelectColumns...).
		From("odds").
		Where(qb.Eq("match_key", matchKey)).
		ToSQL()
	if err != nil {
		return odds.Odds{}, fmt.Errorf("build get odds query: %w", err)
	}

	var row oddsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return odds.Odds{}, fmt.Errorf("%w: odds for match=%s", usecase.ErrNotFound, matchKey)
		}
		return odds.Odds{}, fmt.Errorf("get odds for match %s: %w", matchKey, err)
	}
	return oddsFromRow(row), nil
}

func (r *OddsRepository) ExistsForMatch(ctx context.Context, matchKey string) (bool, error) {
	query, args, err := qb.Select("match_key").
		From("odds").
		Where(qb.Eq("match_key", matchKey)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build odds exists query: %w", err)
	}

	var found string
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check odds for match %s: %w", matchKey, err)
	}
	return true, nil
}

func oddsFromRow(row oddsTableModel) odds.Odds {
	return odds.Odds{
		Key:           row.Key,
		MatchKey:      row.MatchKey,
		TournamentKey: row.TournamentKey,
		EventDate:     row.EventDate,
		Meta: document.Meta{
			Raw:       row.Raw,
			FetchedAt: row.FetchedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}
