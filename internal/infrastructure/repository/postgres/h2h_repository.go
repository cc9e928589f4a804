package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/h2h"
	qb "github.com/courtline/tennis-data-api/internal/platform/querybuilder"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type h2hTableModel struct {
	Key              string    `db:"key"`
	FirstPlayerKey   string    `db:"first_player_key"`
	SecondPlayerKey  string    `db:"second_player_key"`
	FirstPlayerName  string    `db:"first_player_name"`
	SecondPlayerName string    `db:"second_player_name"`
	FirstPlayerWins  int       `db:"first_player_wins"`
	SecondPlayerWins int       `db:"second_player_wins"`
	LastFetched      time.Time `db:"last_fetched"`
	Raw              string    `db:"raw"`
	FetchedAt        time.Time `db:"fetched_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

var h2hSelectColumns = []string{
	"key",
	"first_player_key",
	"second_player_key",
	"first_player_name",
	"second_player_name",
	"first_player_wins",
	"second_player_wins",
	"last_fetched",
	"raw",
	"fetched_at",
	"updated_at",
}

type H2HRepository struct {
	db *sqlx.DB
}

func NewH2HRepository(db *sqlx.DB) *H2HRepository {
	return &H2HRepository{db: db}
}

func (r *H2HRepository) Upsert(ctx context.Context, item h2h.Record) error {
	query, args, err := qb.InsertInto("h2h_records").
		Columns(h2hSelectColumns...).
		Values(
			item.Key,
			item.FirstPlayerKey,
			item.SecondPlayerKey,
			item.FirstPlayerName,
			item.SecondPlayerName,
			item.FirstPlayerWins,
			item.SecondPlayerWins,
			item.LastFetched,
			item.Raw,
			item.FetchedAt,
			item.UpdatedAt,
		).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
    first_player_key = EXCLUDED.first_player_key,
    second_player_key = EXCLUDED.second_player_key,
    first_player_name = EXCLUDED.first_player_name,
    second_player_name = EXCLUDED.second_player_name,
    first_player_wins = EXCLUDED.first_player_wins,
    second_player_wins = EXCLUDED.second_player_wins,
    last_fetched = EXCLUDED.last_fetched,
    raw = EXCLUDED.raw,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert head-to-head query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert head-to-head %s: %w", item.Key, err)
	}
	return nil
}

func (r *H2HRepository) GetByPlayers(ctx context.Context, playerA, playerB string) (h2h.Record, error) {
	key := h2h.CompositeKey(playerA, playerB)
	query, args, err := qb.Select(h2hSelectColumns...).
		From("h2h_records").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return h2h.Record{}, fmt.Errorf("build get head-to-head query: %w", err)
	}

	var row h2hTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return h2h.Record{}, fmt.Errorf("%w: head-to-head=%s", usecase.ErrNotFound, key)
		}
		return h2h.Record{}, fmt.Errorf("get head-to-head %s: %w", key, err)
	}

	return h2h.Record{
		Key:              row.Key,
		FirstPlayerKey:   row.FirstPlayerKey,
		SecondPlayerKey:  row.SecondPlayerKey,
		FirstPlayerName:  row.FirstPlayerName,
		SecondPlayerName: row.SecondPlayerName,
		FirstPlayerWins:  row.FirstPlayerWins,
		SecondPlayerWins: row.SecondPlayerWins,
		LastFetched:      row.LastFetched,
		Meta: document.Meta{
			Raw:       row.Raw,
			FetchedAt: row.FetchedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}, nil
}
