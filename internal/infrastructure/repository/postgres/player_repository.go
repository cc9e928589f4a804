package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	qb "github.com/courtline/tennis-data-api/internal/platform/querybuilder"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type playerTableModel struct {
	PlayerKey string    `db:"player_key"`
	Name      string    `db:"name"`
	Country   string    `db:"country"`
	Hand      string    `db:"hand"`
	Rank      *int      `db:"rank"`
	Raw       string    `db:"raw"`
	FetchedAt time.Time `db:"fetched_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var playerSelectColumns = []string{
	"player_key",
	"name",
	"country",
	"hand",
	"rank",
	"raw",
	"fetched_at",
	"updated_at",
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	query, args, err := qb.InsertInto("players").
		Columns(playerSelectColumns...).
		Values(item.Key, item.Name, item.Country, item.Hand, item.Rank, item.Raw, item.FetchedAt, item.UpdatedAt).
		Suffix(`ON CONFLICT (player_key) DO UPDATE SET
    name = EXCLUDED.name,
    country = EXCLUDED.country,
    hand = EXCLUDED.hand,
    rank = EXCLUDED.rank,
    raw = EXCLUDED.raw,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player %s: %w", item.Key, err)
	}
	return nil
}

func (r *PlayerRepository) GetByKey(ctx context.Context, key string) (player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).
		From("players").
		Where(qb.Eq("player_key", key)).
		ToSQL()
	if err != nil {
		return player.Player{}, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, fmt.Errorf("%w: player=%s", usecase.ErrNotFound, key)
		}
		return player.Player{}, fmt.Errorf("get player %s: %w", key, err)
	}
	return playerFromRow(row), nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).
		From("players").
		OrderBy("player_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func playerFromRow(row playerTableModel) player.Player {
	p := player.Player{
		Key:     row.PlayerKey,
		Name:    row.Name,
		Country: row.Country,
		Hand:    row.Hand,
		Meta: document.Meta{
			Raw:       row.Raw,
			FetchedAt: row.FetchedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
	if row.Rank != nil {
		rank := *row.Rank
		p.Rank = &rank
	}
	return p
}
