package usecase

import (
	"testing"
	"time"
)

func TestTextField(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"name":      "  Ava Torres  ",
		"empty":     "",
		"null_text": "null",
		"missing":   nil,
		"numeric":   float64(1905),
		"flag":      true,
		"nested":    map[string]any{},
	}

	cases := []struct {
		name   string
		fields []string
		want   string
	}{
		{"trims strings", []string{"name"}, "Ava Torres"},
		{"empty counts as absent", []string{"empty"}, ""},
		{"literal null counts as absent", []string{"null_text"}, ""},
		{"nil counts as absent", []string{"missing"}, ""},
		{"numbers coerce", []string{"numeric"}, "1905"},
		{"bools coerce", []string{"flag"}, "true"},
		{"objects are skipped", []string{"nested"}, ""},
		{"fallback order", []string{"empty", "null_text", "numeric"}, "1905"},
		{"first usable wins", []string{"name", "numeric"}, "Ava Torres"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := textField(record, tc.fields...); got != tc.want {
				t.Fatalf("textField(%v) = %q, want %q", tc.fields, got, tc.want)
			}
		})
	}
}

func TestIntFieldBestEffort(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"rank_text":    "12",
		"rank_number":  float64(7),
		"rank_garbage": "NR",
	}

	if got := intField(record, "rank_text"); got == nil || *got != 12 {
		t.Fatalf("intField(rank_text) = %v, want 12", got)
	}
	if got := intField(record, "rank_number"); got == nil || *got != 7 {
		t.Fatalf("intField(rank_number) = %v, want 7", got)
	}
	if got := intField(record, "rank_garbage"); got != nil {
		t.Fatalf("intField(rank_garbage) = %v, want nil", got)
	}
	if got := intField(record, "absent"); got != nil {
		t.Fatalf("intField(absent) = %v, want nil", got)
	}
}

func TestMapFixtureFieldFallbacks(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 25, 12, 0, 0, 0, time.UTC)
	record := map[string]any{
		"event_key":               "101",
		"tournament_key":          "t1",
		"event_date":              "2024-01-02",
		"event_first_player_key":  "p1",
		"event_first_player":      "Ava Torres",
		"event_second_player_key": "p2",
		"event_second_player":     "Riley Chen",
		"event_status":            "Finished",
		"event_winner":            "First Player",
		"event_final_result":      "2 - 0",
	}

	item, ok := mapFixture(record, now)
	if !ok {
		t.Fatal("mapFixture() = false, want true")
	}
	if item.FirstPlayerKey != "p1" || item.SecondPlayerKey != "p2" {
		t.Fatalf("fallback player keys not used: %+v", item)
	}
	if item.EventDate != "2024-01-02" {
		t.Fatalf("unexpected event date: %q", item.EventDate)
	}
	if item.FetchedAt != now || item.UpdatedAt != now {
		t.Fatalf("timestamps not set: %+v", item.Meta)
	}

	if _, ok := mapFixture(map[string]any{"event_date": "2024-01-02"}, now); ok {
		t.Fatal("fixture without event_key must be skipped")
	}
}

func TestMapFixtureDropsUnparseableDate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	item, ok := mapFixture(map[string]any{
		"event_key":  "101",
		"event_date": "January 2nd",
	}, now)
	if !ok {
		t.Fatal("mapFixture() = false, want true")
	}
	if item.EventDate != "" {
		t.Fatalf("unparseable date must clear the field, got %q", item.EventDate)
	}
}

func TestMapPlayerKeyFallback(t *testing.T) {
	t.Parallel()

	now := time.Now()
	item, ok := mapPlayer("", map[string]any{"player_key": "1905", "player_name": "Nova Li"}, now)
	if !ok {
		t.Fatal("mapPlayer() = false, want true")
	}
	if item.Key != "1905" {
		t.Fatalf("unexpected key: %q", item.Key)
	}

	if _, ok := mapPlayer("  ", map[string]any{"player_name": "No Key"}, now); ok {
		t.Fatal("player without any key must be skipped")
	}
}

func TestResultRecordsCoercion(t *testing.T) {
	t.Parallel()

	got := resultRecords([]any{
		map[string]any{"event_key": "1"},
		"stray string",
		map[string]any{"event_key": "2"},
	})
	if len(got) != 2 {
		t.Fatalf("unexpected record count: %d", len(got))
	}

	if got := resultRecords(map[string]any{"k": "v"}); got != nil {
		t.Fatalf("non-array result must yield nil, got %v", got)
	}
	if got := resultRecords(nil); got != nil {
		t.Fatalf("nil result must yield nil, got %v", got)
	}
}
