package usecase

import (
	"context"
	"testing"

	"github.com/courtline/tennis-data-api/internal/platform/logging"
)

func h2hMatchRecord(firstKey, firstName, secondKey, secondName, winner string) map[string]any {
	return map[string]any{
		"first_player_key":    firstKey,
		"event_first_player":  firstName,
		"second_player_key":   secondKey,
		"event_second_player": secondName,
		"event_winner":        winner,
	}
}

func TestIngestH2HStoresCanonicalRecord(t *testing.T) {
	t.Parallel()

	records := newFakeH2HRepo()
	provider := &stubProvider{
		h2h: func(_ context.Context, firstPlayerKey, secondPlayerKey string) (ProviderEnvelope, error) {
			return successEnvelope(map[string]any{
				"H2H": []any{
					h2hMatchRecord("200", "Riley Chen", "100", "Ava Torres", "200"),
					h2hMatchRecord("100", "Ava Torres", "200", "Riley Chen", "First Player"),
					h2hMatchRecord("200", "Riley Chen", "100", "Ava Torres", "Second Player"),
				},
			}), nil
		},
	}
	service := NewH2HService(provider, records, logging.NewNop())

	// Requested in reverse order; the stored record is canonical.
	result := service.IngestH2H(context.Background(), "200", "100")
	if result.Status != IngestionSuccess || result.Count != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "Ingested head-to-head 200 vs 100 (3 matches)" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	stored, ok := records.items["100_200"]
	if !ok {
		t.Fatalf("canonical record missing, stored keys: %v", records.items)
	}
	if stored.FirstPlayerKey != "100" || stored.SecondPlayerKey != "200" {
		t.Fatalf("sides not aligned with canonical key: %+v", stored)
	}
	if stored.FirstPlayerName != "Ava Torres" || stored.SecondPlayerName != "Riley Chen" {
		t.Fatalf("unexpected names: %+v", stored)
	}
	// Wins: "200" direct, "First Player" resolved to 100, "Second
	// Player" resolved to 100.
	if stored.FirstPlayerWins != 2 || stored.SecondPlayerWins != 1 {
		t.Fatalf("unexpected win counts: first=%d second=%d", stored.FirstPlayerWins, stored.SecondPlayerWins)
	}
	if stored.Raw == "" {
		t.Fatal("raw payload was not preserved")
	}
}

func TestIngestH2HAcceptsBareMatchList(t *testing.T) {
	t.Parallel()

	records := newFakeH2HRepo()
	provider := &stubProvider{
		h2h: func(context.Context, string, string) (ProviderEnvelope, error) {
			return successEnvelope([]any{
				h2hMatchRecord("100", "Ava Torres", "200", "Riley Chen", "100"),
			}), nil
		},
	}
	service := NewH2HService(provider, records, logging.NewNop())

	result := service.IngestH2H(context.Background(), "100", "200")
	if result.Status != IngestionSuccess || result.Count != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	stored := records.items["100_200"]
	if stored.FirstPlayerWins != 1 || stored.SecondPlayerWins != 0 {
		t.Fatalf("unexpected win counts: %+v", stored)
	}
}

func TestIngestH2HNoData(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		h2h: func(context.Context, string, string) (ProviderEnvelope, error) {
			return successEnvelope([]any{}), nil
		},
	}
	service := NewH2HService(provider, newFakeH2HRepo(), logging.NewNop())

	result := service.IngestH2H(context.Background(), "100", "200")
	if result.Status != IngestionSuccess || result.Count != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "No head-to-head data found for 100 vs 200" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestIngestH2HRequiresBothKeys(t *testing.T) {
	t.Parallel()

	service := NewH2HService(&stubProvider{}, newFakeH2HRepo(), logging.NewNop())
	result := service.IngestH2H(context.Background(), "100", "  ")
	if result.Status != IngestionFailure {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIngestH2HUnsuccessfulEnvelope(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		h2h: func(context.Context, string, string) (ProviderEnvelope, error) {
			return failureEnvelope(nil), nil
		},
	}
	service := NewH2HService(provider, newFakeH2HRepo(), logging.NewNop())

	result := service.IngestH2H(context.Background(), "100", "200")
	if result.Status != IngestionFailure || result.ErrorType != ErrorTypeAPI {
		t.Fatalf("unexpected result: %+v", result)
	}
}
