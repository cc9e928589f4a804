package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/courtline/tennis-data-api/internal/domain/event"
	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/domain/tournament"
	"github.com/courtline/tennis-data-api/internal/platform/datewindow"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
)

// H2HSummary is the read-side head-to-head view, computed from stored
// fixtures rather than the provider.
type H2HSummary struct {
	FirstPlayerKey   string
	FirstPlayerName  string
	SecondPlayerKey  string
	SecondPlayerName string
	FirstPlayerWins  int
	SecondPlayerWins int
	Matches          []fixture.Fixture
}

// DataService serves the read-only queries downstream consumers rely
// on.
type DataService struct {
	events      event.Repository
	tournaments tournament.Repository
	fixtures    fixture.Repository
	players     player.Repository
	odds        odds.Repository
	logger      *logging.Logger
}

type DataServiceDeps struct {
	Events      event.Repository
	Tournaments tournament.Repository
	Fixtures    fixture.Repository
	Players     player.Repository
	Odds        odds.Repository
	Logger      *logging.Logger
}

func NewDataService(deps DataServiceDeps) *DataService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &DataService{
		events:      deps.Events,
		tournaments: deps.Tournaments,
		fixtures:    deps.Fixtures,
		players:     deps.Players,
		odds:        deps.Odds,
		logger:      logger,
	}
}

func (s *DataService) ListEvents(ctx context.Context) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.ListEvents")
	defer span.End()

	return s.events.List(ctx)
}

func (s *DataService) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.ListTournaments")
	defer span.End()

	return s.tournaments.List(ctx)
}

func (s *DataService) FixturesByDateRange(ctx context.Context, startDay, endDay string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.FixturesByDateRange")
	defer span.End()

	start, err := datewindow.ParseDay(startDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := datewindow.ParseDay(endDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidInput, startDay, endDay)
	}

	return s.fixtures.ListByDateRange(ctx, start.Format(datewindow.DayFormat), end.Format(datewindow.DayFormat))
}

func (s *DataService) FixturesByTournament(ctx context.Context, tournamentKey string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.FixturesByTournament")
	defer span.End()

	tournamentKey = strings.TrimSpace(tournamentKey)
	if tournamentKey == "" {
		return nil, fmt.Errorf("%w: tournament key is required", ErrInvalidInput)
	}
	return s.fixtures.ListByTournament(ctx, tournamentKey)
}

func (s *DataService) FixturesByPlayer(ctx context.Context, playerKey string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.FixturesByPlayer")
	defer span.End()

	playerKey = strings.TrimSpace(playerKey)
	if playerKey == "" {
		return nil, fmt.Errorf("%w: player key is required", ErrInvalidInput)
	}
	return s.fixtures.ListByPlayer(ctx, playerKey)
}

func (s *DataService) PlayerByKey(ctx context.Context, playerKey string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.PlayerByKey")
	defer span.End()

	playerKey = strings.TrimSpace(playerKey)
	if playerKey == "" {
		return player.Player{}, fmt.Errorf("%w: player key is required", ErrInvalidInput)
	}
	return s.players.GetByKey(ctx, playerKey)
}

func (s *DataService) OddsByMatch(ctx context.Context, matchKey string) (odds.Odds, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.OddsByMatch")
	defer span.End()

	matchKey = strings.TrimSpace(matchKey)
	if matchKey == "" {
		return odds.Odds{}, fmt.Errorf("%w: match key is required", ErrInvalidInput)
	}
	return s.odds.GetByMatchKey(ctx, matchKey)
}

// HeadToHead builds the win/loss summary between two players from
// stored fixtures.
func (s *DataService) HeadToHead(ctx context.Context, firstPlayerKey, secondPlayerKey string) (H2HSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "DataService.HeadToHead")
	defer span.End()

	firstPlayerKey = strings.TrimSpace(firstPlayerKey)
	secondPlayerKey = strings.TrimSpace(secondPlayerKey)
	if firstPlayerKey == "" || secondPlayerKey == "" {
		return H2HSummary{}, fmt.Errorf("%w: both player keys are required", ErrInvalidInput)
	}

	candidates, err := s.fixtures.ListByPlayer(ctx, firstPlayerKey)
	if err != nil {
		return H2HSummary{}, err
	}

	matches := make([]fixture.Fixture, 0, len(candidates))
	for _, candidate := range candidates {
		if fixtureHasPlayer(candidate, secondPlayerKey) {
			matches = append(matches, candidate)
		}
	}
	// Most recent first; fixtures without a parseable date sink to
	// the end.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].EventDate == "" {
			return false
		}
		if matches[j].EventDate == "" {
			return true
		}
		return matches[i].EventDate > matches[j].EventDate
	})

	summary := H2HSummary{
		FirstPlayerKey:   firstPlayerKey,
		SecondPlayerKey:  secondPlayerKey,
		FirstPlayerName:  s.resolvePlayerName(ctx, matches, firstPlayerKey),
		SecondPlayerName: s.resolvePlayerName(ctx, matches, secondPlayerKey),
		Matches:          matches,
	}
	summary.FirstPlayerWins, summary.SecondPlayerWins = countFixtureWins(matches, firstPlayerKey, secondPlayerKey)
	return summary, nil
}

func fixtureHasPlayer(f fixture.Fixture, playerKey string) bool {
	return f.FirstPlayerKey == playerKey || f.SecondPlayerKey == playerKey
}

// countFixtureWins mirrors countWins for stored fixtures.
func countFixtureWins(matches []fixture.Fixture, firstPlayerKey, secondPlayerKey string) (int, int) {
	firstWins := 0
	secondWins := 0
	for _, match := range matches {
		switch {
		case match.Winner == firstPlayerKey:
			firstWins++
		case match.Winner == secondPlayerKey:
			secondWins++
		case match.Winner == "First Player" && match.FirstPlayerKey == firstPlayerKey:
			firstWins++
		case match.Winner == "First Player" && match.FirstPlayerKey == secondPlayerKey:
			secondWins++
		case match.Winner == "Second Player" && match.SecondPlayerKey == firstPlayerKey:
			firstWins++
		case match.Winner == "Second Player" && match.SecondPlayerKey == secondPlayerKey:
			secondWins++
		}
	}
	return firstWins, secondWins
}

func (s *DataService) resolvePlayerName(ctx context.Context, matches []fixture.Fixture, playerKey string) string {
	for _, match := range matches {
		if match.FirstPlayerKey == playerKey && match.FirstPlayerName != "" {
			return match.FirstPlayerName
		}
		if match.SecondPlayerKey == playerKey && match.SecondPlayerName != "" {
			return match.SecondPlayerName
		}
	}
	if stored, err := s.players.GetByKey(ctx, playerKey); err == nil && stored.Name != "" {
		return stored.Name
	}
	return playerKey
}
