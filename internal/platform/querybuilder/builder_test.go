package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectWithRangeConditions(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("event_key", "event_date").
		From("fixtures").
		Where(Gte("event_date", "2024-01-01"), Lte("event_date", "2024-01-07")).
		OrderBy("event_date ASC").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}

	wantSQL := "SELECT event_key, event_date FROM fixtures WHERE event_date >= $1 AND event_date <= $2 ORDER BY event_date ASC LIMIT 50"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"2024-01-01", "2024-01-07"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectInWithEmptyValuesNeverMatches(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("player_key").
		From("players").
		Where(In("player_key", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}
	if sql != "SELECT player_key FROM players WHERE 1=0" {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want empty", args)
	}
}

func TestInsertWithConflictSuffix(t *testing.T) {
	t.Parallel()

	sql, args, err := InsertInto("players").
		Columns("player_key", "name", "updated_at").
		Values("p-1", "Player One", "2024-05-01T00:00:00Z").
		Suffix("ON CONFLICT (player_key) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}

	wantSQL := "INSERT INTO players (player_key, name, updated_at) VALUES ($1, $2, $3) " +
		"ON CONFLICT (player_key) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v, want 3 values", args)
	}
}

func TestInsertRowArityMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("players").
		Columns("player_key", "name").
		Values("p-1").
		ToSQL()
	if err == nil {
		t.Fatal("ToSQL() = nil error, want arity mismatch error")
	}
}

func TestExprRewritesQuestionPlaceholders(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("event_key").
		From("odds").
		Where(Eq("match_key", "m-1"), Expr("payload ? ?", "home", "away")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}
	wantSQL := "SELECT event_key FROM odds WHERE match_key = $1 AND payload $2 $3"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"m-1", "home", "away"}) {
		t.Fatalf("args = %v", args)
	}
}
