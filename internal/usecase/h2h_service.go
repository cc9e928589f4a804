package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/h2h"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
)

// H2HService ingests head-to-head records. The stored key is
// order-independent, so ingesting (A, B) and (B, A) updates the same
// record.
type H2HService struct {
	provider TennisDataProvider
	records  h2h.Repository
	logger   *logging.Logger
	now      func() time.Time
}

func NewH2HService(provider TennisDataProvider, records h2h.Repository, logger *logging.Logger) *H2HService {
	if logger == nil {
		logger = logging.Default()
	}
	return &H2HService{
		provider: provider,
		records:  records,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *H2HService) IngestH2H(ctx context.Context, firstPlayerKey, secondPlayerKey string) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "H2HService.IngestH2H")
	defer span.End()

	firstPlayerKey = strings.TrimSpace(firstPlayerKey)
	secondPlayerKey = strings.TrimSpace(secondPlayerKey)
	if firstPlayerKey == "" || secondPlayerKey == "" {
		return FailureResult("both player keys are required", ErrorTypeUnknown)
	}

	envelope, err := s.provider.GetH2H(ctx, firstPlayerKey, secondPlayerKey)
	if err != nil {
		if statusErr, ok := AsProviderStatusError(err); ok {
			result := FailureForStatus(statusErr.StatusCode, false)
			result.Message = "Failed to fetch head-to-head - " + result.Message
			return result
		}
		return FailureResult("Error ingesting head-to-head: "+err.Error(), ErrorTypeUnknown)
	}
	if !envelope.IsSuccess() {
		return FailureResult("API Tennis returned unsuccessful response for head-to-head", ErrorTypeAPI)
	}

	matches := h2hMatches(envelope.Result)
	if len(matches) == 0 {
		return SuccessResult(0, fmt.Sprintf("No head-to-head data found for %s vs %s", firstPlayerKey, secondPlayerKey))
	}

	firstWins, secondWins := countWins(matches, firstPlayerKey, secondPlayerKey)
	firstName := playerNameFromMatches(matches, firstPlayerKey)
	secondName := playerNameFromMatches(matches, secondPlayerKey)

	now := s.now()
	record := h2h.Record{
		Key:              h2h.CompositeKey(firstPlayerKey, secondPlayerKey),
		FirstPlayerKey:   firstPlayerKey,
		SecondPlayerKey:  secondPlayerKey,
		FirstPlayerName:  firstName,
		SecondPlayerName: secondName,
		FirstPlayerWins:  firstWins,
		SecondPlayerWins: secondWins,
		LastFetched:      now,
	}
	// Keep the stored sides aligned with the canonical key order.
	if record.Key != firstPlayerKey+"_"+secondPlayerKey {
		record.FirstPlayerKey, record.SecondPlayerKey = secondPlayerKey, firstPlayerKey
		record.FirstPlayerName, record.SecondPlayerName = secondName, firstName
		record.FirstPlayerWins, record.SecondPlayerWins = secondWins, firstWins
	}

	raw, err := sonic.MarshalString(envelope.Result)
	if err != nil {
		raw = ""
	}
	record.Meta = document.NewMeta(raw, now)

	if err := s.records.Upsert(ctx, record); err != nil {
		return FailureResult("Error ingesting head-to-head: "+err.Error(), ErrorTypeUnknown)
	}

	s.logger.InfoContext(ctx, "ingested head-to-head",
		"first_player_key", firstPlayerKey,
		"second_player_key", secondPlayerKey,
		"matches", len(matches),
	)
	return SuccessResult(1, fmt.Sprintf("Ingested head-to-head %s vs %s (%d matches)", firstPlayerKey, secondPlayerKey, len(matches)))
}

// h2hMatches tolerates both result shapes: an object holding the H2H
// match list, or the list itself.
func h2hMatches(result any) []map[string]any {
	if shaped, ok := result.(map[string]any); ok {
		return resultRecords(shaped["H2H"])
	}
	return resultRecords(result)
}

// countWins attributes each finished match to one side. The winner
// field carries either a player key or the provider's positional
// "First Player"/"Second Player" labels, resolved against the match's
// own player keys.
func countWins(matches []map[string]any, firstPlayerKey, secondPlayerKey string) (int, int) {
	firstWins := 0
	secondWins := 0
	for _, match := range matches {
		winner := textField(match, "event_winner")
		if winner == "" {
			continue
		}
		matchFirstKey := textField(match, "first_player_key", "event_first_player_key")
		matchSecondKey := textField(match, "second_player_key", "event_second_player_key")

		switch {
		case winner == firstPlayerKey:
			firstWins++
		case winner == secondPlayerKey:
			secondWins++
		case winner == "First Player" && matchFirstKey == firstPlayerKey:
			firstWins++
		case winner == "First Player" && matchFirstKey == secondPlayerKey:
			secondWins++
		case winner == "Second Player" && matchSecondKey == firstPlayerKey:
			firstWins++
		case winner == "Second Player" && matchSecondKey == secondPlayerKey:
			secondWins++
		}
	}
	return firstWins, secondWins
}

func playerNameFromMatches(matches []map[string]any, playerKey string) string {
	for _, match := range matches {
		if textField(match, "first_player_key", "event_first_player_key") == playerKey {
			if name := textField(match, "event_first_player"); name != "" {
				return name
			}
		}
		if textField(match, "second_player_key", "event_second_player_key") == playerKey {
			if name := textField(match, "event_second_player"); name != "" {
				return name
			}
		}
	}
	return playerKey
}
