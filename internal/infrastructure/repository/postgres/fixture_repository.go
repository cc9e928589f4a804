package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	qb "github.com/courtline/tennis-data-api/internal/platform/querybuilder"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type fixtureTableModel struct {
	EventKey         string    `db:"event_key"`
	TournamentKey    string    `db:"tournament_key"`
	EventDate        string    `db:"event_date"`
	FirstPlayerKey   string    `db:"first_player_key"`
	FirstPlayerName  string    `db:"first_player_name"`
	SecondPlayerKey  string    `db:"second_player_key"`
	SecondPlayerName string    `db:"second_player_name"`
	Status           string    `db:"status"`
	Winner           string    `db:"winner"`
	FinalResult      string    `db:"final_result"`
	Raw              string    `db:"raw"`
	FetchedAt        time.Time `db:"fetched_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

var fixtureSelectColumns = []string{
	"event_key",
	"tournament_key",
	"event_date",
	"first_player_key",
	"first_player_name",
	"second_player_key",
	"second_player_name",
	"status",
	"winner",
	"final_result",
	"raw",
	"fetched_at",
	"updated_at",
}

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) Upsert(ctx context.Context, item fixture.Fixture) error {
	query, args, err := qb.InsertInto("fixtures").
		Columns(fixtureSelectColumns...).
		Values(
			item.EventKey,
			item.TournamentKey,
			item.EventDate,
			item.FirstPlayerKey,
			item.FirstPlayerName,
			item.SecondPlayerKey,
			item.SecondPlayerName,
			item.Status,
			item.Winner,
			item.FinalResult,
			item.Raw,
			item.FetchedAt,
			item.UpdatedAt,
		).
		Suffix(`ON CONFLICT (event_key) DO UPDATE SET
    tournament_key = EXCLUDED.tournament_key,
    event_date = EXCLUDED.event_date,
    first_player_key = EXCLUDED.first_player_key,
    first_player_name = EXCLUDED.first_player_name,
    second_player_key = EXCLUDED.second_player_key,
    second_player_name = EXCLUDED.second_player_name,
    status = EXCLUDED.status,
    winner = EXCLUDED.winner,
    final_result = EXCLUDED.final_result,
    raw = EXCLUDED.raw,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert fixture %s: %w", item.EventKey, err)
	}
	return nil
}

func (r *FixtureRepository) GetByEventKey(ctx context.Context, eventKey string) (fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).
		From("fixtures").
		Where(qb.Eq("event_key", eventKey)).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("build get fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", usecase.ErrNotFound, eventKey)
		}
		return fixture.Fixture{}, fmt.Errorf("get fixture %s: %w", eventKey, err)
	}
	return fixtureFromRow(row), nil
}

func (r *FixtureRepository) ListByDateRange(ctx context.Context, startDay, endDay string) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).
		From("fixtures").
		Where(
			qb.Expr("event_date <> ''"),
			qb.Gte("event_date", startDay),
			qb.Lte("event_date", endDay),
		).
		OrderBy("event_date ASC", "event_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by date query: %w", err)
	}
	return r.selectFixtures(ctx, query, args)
}

func (r *FixtureRepository) ListByTournament(ctx context.Context, tournamentKey string) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).
		From("fixtures").
		Where(qb.Eq("tournament_key", tournamentKey)).
		OrderBy("event_date ASC", "event_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by tournament query: %w", err)
	}
	return r.selectFixtures(ctx, query, args)
}

func (r *FixtureRepository) ListByPlayer(ctx context.Context, playerKey string) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).
		From("fixtures").
		Where(qb.Expr("(first_player_key = ? OR second_player_key = ?)", playerKey, playerKey)).
		OrderBy("event_date ASC", "event_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures by player query: %w", err)
	}
	return r.selectFixtures(ctx, query, args)
}

func (r *FixtureRepository) DistinctPlayerKeys(ctx context.Context) ([]string, error) {
	// Both sides of every match, deduplicated. The builder has no
	// UNION support, so this one stays handwritten.
	query := `SELECT DISTINCT player_key FROM (
    SELECT first_player_key AS player_key FROM fixtures WHERE first_player_key <> ''
    UNION
    SELECT second_player_key FROM fixtures WHERE second_player_key <> ''
) side ORDER BY player_key ASC`

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list distinct fixture player keys: %w", err)
	}
	return keys, nil
}

func (r *FixtureRepository) selectFixtures(ctx context.Context, query string, args []any) ([]fixture.Fixture, error) {
	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}
	return out, nil
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	return fixture.Fixture{
		EventKey:         row.EventKey,
		TournamentKey:    row.TournamentKey,
		EventDate:        row.EventDate,
		FirstPlayerKey:   row.FirstPlayerKey,
		FirstPlayerName:  row.FirstPlayerName,
		SecondPlayerKey:  row.SecondPlayerKey,
		SecondPlayerName: row.SecondPlayerName,
		Status:           row.Status,
		Winner:           row.Winner,
		FinalResult:      row.FinalResult,
		Meta: document.Meta{
			Raw:       row.Raw,
			FetchedAt: row.FetchedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}
