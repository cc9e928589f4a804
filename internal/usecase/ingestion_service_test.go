package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
)

type ingestionHarness struct {
	provider    *stubProvider
	events      *fakeEventRepo
	tournaments *fakeTournamentRepo
	fixtures    *fakeFixtureRepo
	players     *fakePlayerRepo
	odds        *fakeOddsRepo
	notifier    *recordingNotifier
	now         time.Time
}

func newIngestionHarness() *ingestionHarness {
	return &ingestionHarness{
		provider:    &stubProvider{},
		events:      newFakeEventRepo(),
		tournaments: newFakeTournamentRepo(),
		fixtures:    newFakeFixtureRepo(),
		players:     newFakePlayerRepo(),
		odds:        newFakeOddsRepo(),
		notifier:    &recordingNotifier{},
		now:         time.Date(2024, time.January, 25, 12, 0, 0, 0, time.UTC),
	}
}

func (h *ingestionHarness) service() *IngestionService {
	return NewIngestionService(IngestionServiceDeps{
		Provider:    h.provider,
		Events:      h.events,
		Tournaments: h.tournaments,
		Fixtures:    h.fixtures,
		Players:     h.players,
		Odds:        h.odds,
		Notifier:    h.notifier,
		Logger:      logging.NewNop(),
		Now:         func() time.Time { return h.now },
	})
}

func TestIngestEventsStoresRecordsAndSkipsMalformed(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.events = func(context.Context) (ProviderEnvelope, error) {
		return successEnvelope([]any{
			map[string]any{"event_type_key": float64(265), "event_type_name": "Atp Singles"},
			map[string]any{"event_type_name": "missing key"},
		}), nil
	}

	result := h.service().IngestEvents(context.Background())
	if result.Status != IngestionSuccess {
		t.Fatalf("unexpected status: got=%s want=%s (%s)", result.Status, IngestionSuccess, result.Message)
	}
	if result.Count != 1 {
		t.Fatalf("unexpected count: got=%d want=1", result.Count)
	}
	if result.Message != "Ingested 1 events" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	stored, ok := h.events.items["265"]
	if !ok {
		t.Fatal("event 265 was not stored")
	}
	if stored.Name != "Atp Singles" {
		t.Fatalf("unexpected event name: %q", stored.Name)
	}
	if stored.Raw == "" {
		t.Fatal("raw payload was not preserved")
	}
}

func TestIngestEventsReingestOverwritesExisting(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	name := "Atp Singles"
	h.provider.events = func(context.Context) (ProviderEnvelope, error) {
		return successEnvelope([]any{
			map[string]any{"event_type_key": "265", "event_type_name": name},
		}), nil
	}

	result := h.service().IngestEvents(context.Background())
	if result.Status != IngestionSuccess || result.Count != 1 {
		t.Fatalf("unexpected first result: %+v", result)
	}
	firstUpdatedAt := h.events.items["265"].UpdatedAt

	name = "ATP Singles (renamed)"
	h.now = h.now.Add(time.Hour)
	result = h.service().IngestEvents(context.Background())
	if result.Status != IngestionSuccess || result.Count != 1 {
		t.Fatalf("unexpected second result: %+v", result)
	}

	if len(h.events.items) != 1 {
		t.Fatalf("expected single stored event, got %d", len(h.events.items))
	}
	stored := h.events.items["265"]
	if stored.Name != "ATP Singles (renamed)" {
		t.Fatalf("second payload did not win: %q", stored.Name)
	}
	if !strings.Contains(stored.Raw, "renamed") {
		t.Fatalf("raw payload not refreshed: %q", stored.Raw)
	}
	if !stored.UpdatedAt.After(firstUpdatedAt) {
		t.Fatalf("updated_at not advanced: first=%v second=%v", firstUpdatedAt, stored.UpdatedAt)
	}
}

func TestIngestEventsMapsRateLimitStatus(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.events = func(context.Context) (ProviderEnvelope, error) {
		return ProviderEnvelope{}, &ProviderStatusError{StatusCode: 429}
	}

	result := h.service().IngestEvents(context.Background())
	if result.Status != IngestionFailure {
		t.Fatalf("unexpected status: got=%s want=%s", result.Status, IngestionFailure)
	}
	if result.ErrorType != "API_ERROR_429" {
		t.Fatalf("unexpected error type: %q", result.ErrorType)
	}
	want := "Failed to fetch events - rate limit exceeded - wait a few minutes before retrying"
	if result.Message != want {
		t.Fatalf("unexpected message: got=%q want=%q", result.Message, want)
	}
}

func TestIngestFixturesRejectsUnsuccessfulEnvelope(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.fixtures = func(context.Context, string, string) (ProviderEnvelope, error) {
		return failureEnvelope([]any{}), nil
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := h.service().IngestFixtures(context.Background(), start, start.AddDate(0, 0, 2))
	if result.Status != IngestionFailure || result.ErrorType != ErrorTypeAPI {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIngestFixturesBatchedSingleWindowDelegates(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	calls := 0
	h.provider.fixtures = func(_ context.Context, dateStart, dateStop string) (ProviderEnvelope, error) {
		calls++
		if dateStart != "2024-01-01" || dateStop != "2024-01-03" {
			t.Errorf("unexpected window: %s to %s", dateStart, dateStop)
		}
		return successEnvelope([]any{
			map[string]any{"event_key": "11", "event_date": "2024-01-02"},
		}), nil
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := h.service().IngestFixturesBatched(context.Background(), start, start.AddDate(0, 0, 2))
	if calls != 1 {
		t.Fatalf("provider called %d times, want 1", calls)
	}
	if result.Message != "Ingested 1 fixtures" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if len(h.notifier.operations) != 1 || h.notifier.operations[0] != "fixtures_batched" {
		t.Fatalf("unexpected notifications: %v", h.notifier.operations)
	}
}

func TestIngestFixturesBatchedSplitsLongRange(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	var windows []string
	h.provider.fixtures = func(_ context.Context, dateStart, dateStop string) (ProviderEnvelope, error) {
		windows = append(windows, dateStart+".."+dateStop)
		return successEnvelope([]any{
			map[string]any{"event_key": "fx-" + dateStart, "event_date": dateStart},
		}), nil
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	result := h.service().IngestFixturesBatched(context.Background(), start, end)

	wantWindows := []string{
		"2024-01-01..2024-01-07",
		"2024-01-08..2024-01-14",
		"2024-01-15..2024-01-20",
	}
	if len(windows) != len(wantWindows) {
		t.Fatalf("unexpected window count: got=%v", windows)
	}
	for i, want := range wantWindows {
		if windows[i] != want {
			t.Fatalf("window %d: got=%s want=%s", i, windows[i], want)
		}
	}

	if result.Status != IngestionSuccess || result.Count != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "Ingested 3 fixtures in 3 batches" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestIngestFixturesBatchedPartialFailureNamesWindow(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.fixtures = func(_ context.Context, dateStart, _ string) (ProviderEnvelope, error) {
		if dateStart == "2024-01-08" {
			return ProviderEnvelope{}, &ProviderStatusError{StatusCode: 500}
		}
		return successEnvelope([]any{
			map[string]any{"event_key": "fx-" + dateStart, "event_date": dateStart},
		}), nil
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	result := h.service().IngestFixturesBatched(context.Background(), start, end)

	if result.Status != IngestionPartialSuccess {
		t.Fatalf("unexpected status: got=%s want=%s (%s)", result.Status, IngestionPartialSuccess, result.Message)
	}
	if result.Count != 2 {
		t.Fatalf("unexpected count: got=%d want=2", result.Count)
	}
	if !strings.HasPrefix(result.Message, "Partial success: 2 fixtures ingested, 1 batch errors:") {
		t.Fatalf("unexpected message prefix: %q", result.Message)
	}
	if !strings.Contains(result.Message, "Batch 2 (2024-01-08 to 2024-01-14): Failed to fetch fixtures - API server error (try a smaller date range or wait and retry)") {
		t.Fatalf("message does not name the failed window: %q", result.Message)
	}

	// Partial progress still notifies downstream.
	if len(h.notifier.operations) != 1 {
		t.Fatalf("unexpected notifications: %v", h.notifier.operations)
	}
}

func TestIngestFixturesBatchedAllWindowsFail(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.fixtures = func(context.Context, string, string) (ProviderEnvelope, error) {
		return ProviderEnvelope{}, &ProviderStatusError{StatusCode: 503}
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	result := h.service().IngestFixturesBatched(context.Background(), start, end)

	if result.Status != IngestionFailure || result.ErrorType != ErrorTypeAPI {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(result.Message, "All batches failed:") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if len(h.notifier.operations) != 0 {
		t.Fatalf("failed run must not notify, got %v", h.notifier.operations)
	}
}

func TestIngestFixturesBatchedInvalidRange(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	start := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	result := h.service().IngestFixturesBatched(context.Background(), start, end)
	if result.Status != IngestionFailure || result.ErrorType != ErrorTypeInvalidRange {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIngestPlayerSkipsFreshProfile(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.players.items["1905"] = player.Player{
		Key:  "1905",
		Name: "Nova Li",
		Meta: document.Meta{FetchedAt: h.now.Add(-time.Hour)},
	}
	// provider.player stays nil: any upstream call fails the test.

	result := h.service().IngestPlayer(context.Background(), "1905")
	if result.Status != IngestionSuccess || result.Count != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "Player already up-to-date (fetched within 24 hours)" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestIngestPlayerRefreshesStaleProfile(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.players.items["1905"] = player.Player{
		Key:  "1905",
		Meta: document.Meta{FetchedAt: h.now.Add(-25 * time.Hour)},
	}
	h.provider.player = func(_ context.Context, playerKey string) (ProviderEnvelope, error) {
		if playerKey != "1905" {
			t.Errorf("unexpected player key: %s", playerKey)
		}
		return successEnvelope([]any{
			map[string]any{"player_name": "Nova Li", "player_rank": "7", "player_country": "Australia"},
		}), nil
	}

	result := h.service().IngestPlayer(context.Background(), "1905")
	if result.Status != IngestionSuccess || result.Count != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "Ingested player: Nova Li" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	stored := h.players.items["1905"]
	if stored.Rank == nil || *stored.Rank != 7 {
		t.Fatalf("unexpected rank: %v", stored.Rank)
	}
	if stored.FetchedAt != h.now {
		t.Fatalf("fetched_at not refreshed: %v", stored.FetchedAt)
	}
}

func TestSyncPlayersFromFixtures(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.fixtures.items["1"] = fixtureWithPlayers("1", "p1", "p2")
	h.fixtures.items["2"] = fixtureWithPlayers("2", "p2", "p3")
	h.players.items["p2"] = player.Player{
		Key:  "p2",
		Meta: document.Meta{FetchedAt: h.now.Add(-time.Hour)},
	}
	h.provider.player = func(_ context.Context, playerKey string) (ProviderEnvelope, error) {
		if playerKey == "p3" {
			return ProviderEnvelope{}, &ProviderStatusError{StatusCode: 500}
		}
		return successEnvelope([]any{
			map[string]any{"player_name": "Player " + playerKey},
		}), nil
	}

	result := h.service().SyncPlayersFromFixtures(context.Background())
	if result.Status != IngestionPartialSuccess {
		t.Fatalf("unexpected status: got=%s (%s)", result.Status, result.Message)
	}
	if result.Count != 1 {
		t.Fatalf("unexpected count: got=%d want=1", result.Count)
	}
	want := "Synced 2 players (fetched: 1, failed: 1, skipped 1 up-to-date)"
	if result.Message != want {
		t.Fatalf("unexpected message: got=%q want=%q", result.Message, want)
	}
	if _, ok := h.players.items["p1"]; !ok {
		t.Fatal("player p1 was not stored")
	}
}

func TestSyncPlayersFromFixturesEmptyProfileIsNotFailure(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.fixtures.items["1"] = fixtureWithPlayers("1", "p1", "p2")
	h.provider.player = func(_ context.Context, playerKey string) (ProviderEnvelope, error) {
		if playerKey == "p1" {
			return successEnvelope([]any{}), nil
		}
		return successEnvelope([]any{
			map[string]any{"player_name": "Player " + playerKey},
		}), nil
	}

	result := h.service().SyncPlayersFromFixtures(context.Background())
	if result.Status != IngestionSuccess {
		t.Fatalf("unexpected status: got=%s (%s)", result.Status, result.Message)
	}
	if result.Count != 1 {
		t.Fatalf("unexpected count: got=%d want=1", result.Count)
	}
	want := "Synced 2 players (fetched: 1, failed: 0, skipped 0 up-to-date)"
	if result.Message != want {
		t.Fatalf("unexpected message: got=%q want=%q", result.Message, want)
	}
	if _, ok := h.players.items["p1"]; ok {
		t.Fatal("player with no upstream profile must not be stored")
	}
	if _, ok := h.players.items["p2"]; !ok {
		t.Fatal("player p2 was not stored")
	}
}

func TestSyncPlayersFromFixturesAllFresh(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.fixtures.items["1"] = fixtureWithPlayers("1", "p1", "p2")
	for _, key := range []string{"p1", "p2"} {
		h.players.items[key] = player.Player{
			Key:  key,
			Meta: document.Meta{FetchedAt: h.now.Add(-time.Hour)},
		}
	}

	result := h.service().SyncPlayersFromFixtures(context.Background())
	if result.Status != IngestionSuccess || result.Count != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "All 2 players already up-to-date" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestIngestOddsHandlesBothResultShapes(t *testing.T) {
	t.Parallel()

	arrayShape := []any{
		map[string]any{"match_key": "101", "event_date": "2024-01-02"},
		map[string]any{"event_key": "102", "event_date": "2024-01-03"},
	}
	objectShape := map[string]any{
		"101": map[string]any{"event_date": "2024-01-02"},
		"102": map[string]any{"event_date": "2024-01-03"},
	}

	for _, tc := range []struct {
		name   string
		result any
	}{
		{"array shape", arrayShape},
		{"object shape", objectShape},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newIngestionHarness()
			h.provider.odds = func(context.Context, string, string) (ProviderEnvelope, error) {
				return successEnvelope(tc.result), nil
			}

			start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
			result := h.service().IngestOdds(context.Background(), start, start.AddDate(0, 0, 6))
			if result.Status != IngestionSuccess || result.Count != 2 {
				t.Fatalf("unexpected result: %+v", result)
			}
			if result.Message != "Ingested 2 odds records" {
				t.Fatalf("unexpected message: %q", result.Message)
			}
			for _, matchKey := range []string{"101", "102"} {
				stored, ok := h.odds.items[matchKey]
				if !ok {
					t.Fatalf("odds for match %s not stored", matchKey)
				}
				if stored.Key != odds.KeyFor(matchKey) {
					t.Fatalf("unexpected stored key: %q", stored.Key)
				}
			}
		})
	}
}

func TestIngestOddsUnexpectedShape(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.odds = func(context.Context, string, string) (ProviderEnvelope, error) {
		return successEnvelope("not a collection"), nil
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := h.service().IngestOdds(context.Background(), start, start)
	if result.Status != IngestionSuccess || result.Count != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "No odds found - unexpected response format" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestIngestOddsForMatchSkipsExisting(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.odds.items["777"] = odds.Odds{Key: odds.KeyFor("777"), MatchKey: "777"}

	result := h.service().IngestOddsForMatch(context.Background(), "777")
	if result.Status != IngestionSuccess || result.Count != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "Odds already ingested for match 777" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestIngestOddsForMatchStoresUnrecognizedPayload(t *testing.T) {
	t.Parallel()

	h := newIngestionHarness()
	h.provider.oddsByMatch = func(_ context.Context, matchKey string) (ProviderEnvelope, error) {
		return successEnvelope(map[string]any{
			"bookmakers": []any{map[string]any{"name": "bk1"}},
		}), nil
	}

	result := h.service().IngestOddsForMatch(context.Background(), "777")
	if result.Status != IngestionSuccess || result.Count != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, ok := h.odds.items["777"]
	if !ok {
		t.Fatal("odds for match 777 not stored")
	}
	if stored.Key != "odds_777" {
		t.Fatalf("unexpected stored key: %q", stored.Key)
	}
	if !strings.Contains(stored.Raw, "bookmakers") {
		t.Fatalf("raw payload not preserved: %q", stored.Raw)
	}
}
