package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

const defaultVerificationWorkers = 8

// PredictionRow is one uploaded prediction: which player was picked
// to win a match, and the decimal odds the pick was taken at (zero
// when unknown).
type PredictionRow struct {
	MatchKey           string
	PredictedWinnerKey string
	Odds               float64
}

type PredictionOutcome string

const (
	OutcomeCorrect   PredictionOutcome = "correct"
	OutcomeIncorrect PredictionOutcome = "incorrect"
	OutcomePending   PredictionOutcome = "pending"
)

type VerifiedPrediction struct {
	MatchKey           string            `json:"match_key"`
	PredictedWinnerKey string            `json:"predicted_winner_key"`
	ActualWinnerKey    string            `json:"actual_winner_key,omitempty"`
	Outcome            PredictionOutcome `json:"outcome"`
	Profit             float64           `json:"profit"`
}

// VerificationReport summarizes predictions against stored fixture
// results. ROI assumes a flat one-unit stake on every settled
// prediction.
type VerificationReport struct {
	Total     int                  `json:"total"`
	Correct   int                  `json:"correct"`
	Incorrect int                  `json:"incorrect"`
	Pending   int                  `json:"pending"`
	Accuracy  float64              `json:"accuracy"`
	ROI       float64              `json:"roi"`
	Rows      []VerifiedPrediction `json:"rows"`
}

// VerificationService checks uploaded predictions against stored
// fixtures. Lookups run on a worker pool; only the store is touched,
// never the upstream provider.
type VerificationService struct {
	fixtures   fixture.Repository
	logger     *logging.Logger
	maxWorkers int
}

func NewVerificationService(fixtures fixture.Repository, logger *logging.Logger, maxWorkers int) *VerificationService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = defaultVerificationWorkers
	}
	return &VerificationService{
		fixtures:   fixtures,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// ParsePredictionsCSV reads prediction rows from CSV input with a
// match_key,predicted_winner_key,odds header. The odds column is
// optional.
func ParsePredictionsCSV(r io.Reader) ([]PredictionRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse predictions csv: %v", ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: predictions csv is empty", ErrInvalidInput)
	}

	start := 0
	if isPredictionHeader(records[0]) {
		start = 1
	}

	rows := make([]PredictionRow, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: csv row %d needs at least match_key and predicted_winner_key", ErrInvalidInput, i+1)
		}
		row := PredictionRow{
			MatchKey:           strings.TrimSpace(record[0]),
			PredictedWinnerKey: strings.TrimSpace(record[1]),
		}
		if row.MatchKey == "" || row.PredictedWinnerKey == "" {
			return nil, fmt.Errorf("%w: csv row %d has empty match_key or predicted_winner_key", ErrInvalidInput, i+1)
		}
		if len(record) >= 3 && strings.TrimSpace(record[2]) != "" {
			parsed, parseErr := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
			if parseErr != nil {
				return nil, fmt.Errorf("%w: csv row %d has invalid odds %q", ErrInvalidInput, i+1, record[2])
			}
			row.Odds = parsed
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isPredictionHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "match_key")
}

// Verify settles each prediction against the stored fixture. Matches
// that are missing or not finished stay pending and are excluded from
// accuracy and ROI.
func (s *VerificationService) Verify(ctx context.Context, rows []PredictionRow) (VerificationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "VerificationService.Verify")
	defer span.End()

	if len(rows) == 0 {
		return VerificationReport{}, fmt.Errorf("%w: no predictions to verify", ErrInvalidInput)
	}

	workerCount := s.maxWorkers
	if workerCount > len(rows) {
		workerCount = len(rows)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return VerificationReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	verified := make([]VerifiedPrediction, len(rows))
	var workers sync.WaitGroup
	for i, row := range rows {
		i, row := i, row
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			verified[i] = s.verifyOne(ctx, row)
		}); err != nil {
			workers.Done()
			verified[i] = VerifiedPrediction{
				MatchKey:           row.MatchKey,
				PredictedWinnerKey: row.PredictedWinnerKey,
				Outcome:            OutcomePending,
			}
		}
	}
	workers.Wait()

	report := VerificationReport{
		Total: len(verified),
		Rows:  verified,
	}
	profit := 0.0
	for _, row := range verified {
		switch row.Outcome {
		case OutcomeCorrect:
			report.Correct++
		case OutcomeIncorrect:
			report.Incorrect++
		default:
			report.Pending++
		}
		profit += row.Profit
	}
	settled := report.Correct + report.Incorrect
	if settled > 0 {
		report.Accuracy = float64(report.Correct) / float64(settled)
		report.ROI = profit / float64(settled)
	}

	s.logger.InfoContext(ctx, "verified predictions",
		"total", report.Total,
		"correct", report.Correct,
		"incorrect", report.Incorrect,
		"pending", report.Pending,
	)
	return report, nil
}

func (s *VerificationService) verifyOne(ctx context.Context, row PredictionRow) VerifiedPrediction {
	out := VerifiedPrediction{
		MatchKey:           row.MatchKey,
		PredictedWinnerKey: row.PredictedWinnerKey,
		Outcome:            OutcomePending,
	}

	match, err := s.fixtures.GetByEventKey(ctx, row.MatchKey)
	if err != nil {
		return out
	}
	if !fixture.IsFinishedStatus(match.Status) {
		return out
	}

	winnerKey := resolveWinnerKey(match)
	if winnerKey == "" {
		return out
	}
	out.ActualWinnerKey = winnerKey

	if winnerKey == row.PredictedWinnerKey {
		out.Outcome = OutcomeCorrect
		if row.Odds > 1 {
			out.Profit = row.Odds - 1
		}
		return out
	}

	out.Outcome = OutcomeIncorrect
	out.Profit = -1
	return out
}

// resolveWinnerKey maps the stored winner field, which holds either a
// player key or the provider's positional label, to a player key.
func resolveWinnerKey(match fixture.Fixture) string {
	switch match.Winner {
	case "":
		return ""
	case "First Player":
		return match.FirstPlayerKey
	case "Second Player":
		return match.SecondPlayerKey
	}
	if match.Winner == match.FirstPlayerKey || match.Winner == match.SecondPlayerKey {
		return match.Winner
	}
	// Some payloads carry the winner's display name instead.
	if match.Winner == match.FirstPlayerName {
		return match.FirstPlayerKey
	}
	if match.Winner == match.SecondPlayerName {
		return match.SecondPlayerKey
	}
	return ""
}
