package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/courtline/tennis-data-api/internal/domain/event"
	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/domain/h2h"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/domain/tournament"
)

var errRepoNotFound = errors.New("not found")

func successEnvelope(result any) ProviderEnvelope {
	return ProviderEnvelope{Success: float64(1), Result: result}
}

func failureEnvelope(result any) ProviderEnvelope {
	return ProviderEnvelope{Success: float64(0), Result: result}
}

type stubProvider struct {
	events               func(ctx context.Context) (ProviderEnvelope, error)
	tournaments          func(ctx context.Context, eventTypeKey string) (ProviderEnvelope, error)
	fixtures             func(ctx context.Context, dateStart, dateStop string) (ProviderEnvelope, error)
	fixturesByTournament func(ctx context.Context, tournamentKey string) (ProviderEnvelope, error)
	player               func(ctx context.Context, playerKey string) (ProviderEnvelope, error)
	odds                 func(ctx context.Context, dateStart, dateStop string) (ProviderEnvelope, error)
	oddsByMatch          func(ctx context.Context, matchKey string) (ProviderEnvelope, error)
	h2h                  func(ctx context.Context, firstPlayerKey, secondPlayerKey string) (ProviderEnvelope, error)
}

func (p *stubProvider) GetEvents(ctx context.Context) (ProviderEnvelope, error) {
	if p.events == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetEvents call")
	}
	return p.events(ctx)
}

func (p *stubProvider) GetTournaments(ctx context.Context, eventTypeKey string) (ProviderEnvelope, error) {
	if p.tournaments == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetTournaments call")
	}
	return p.tournaments(ctx, eventTypeKey)
}

func (p *stubProvider) GetFixtures(ctx context.Context, dateStart, dateStop string) (ProviderEnvelope, error) {
	if p.fixtures == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetFixtures call")
	}
	return p.fixtures(ctx, dateStart, dateStop)
}

func (p *stubProvider) GetFixturesByTournament(ctx context.Context, tournamentKey string) (ProviderEnvelope, error) {
	if p.fixturesByTournament == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetFixturesByTournament call")
	}
	return p.fixturesByTournament(ctx, tournamentKey)
}

func (p *stubProvider) GetPlayer(ctx context.Context, playerKey string) (ProviderEnvelope, error) {
	if p.player == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetPlayer call")
	}
	return p.player(ctx, playerKey)
}

func (p *stubProvider) GetOdds(ctx context.Context, dateStart, dateStop string) (ProviderEnvelope, error) {
	if p.odds == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetOdds call")
	}
	return p.odds(ctx, dateStart, dateStop)
}

func (p *stubProvider) GetOddsByMatch(ctx context.Context, matchKey string) (ProviderEnvelope, error) {
	if p.oddsByMatch == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetOddsByMatch call")
	}
	return p.oddsByMatch(ctx, matchKey)
}

func (p *stubProvider) GetH2H(ctx context.Context, firstPlayerKey, secondPlayerKey string) (ProviderEnvelope, error) {
	if p.h2h == nil {
		return ProviderEnvelope{}, errors.New("unexpected GetH2H call")
	}
	return p.h2h(ctx, firstPlayerKey, secondPlayerKey)
}

type fakeEventRepo struct {
	items     map[string]event.Event
	upsertErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{items: make(map[string]event.Event)}
}

func (r *fakeEventRepo) Upsert(_ context.Context, item event.Event) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.items[item.TypeKey] = item
	return nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]event.Event, error) {
	out := make([]event.Event, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeKey < out[j].TypeKey })
	return out, nil
}

type fakeTournamentRepo struct {
	items map[string]tournament.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{items: make(map[string]tournament.Tournament)}
}

func (r *fakeTournamentRepo) Upsert(_ context.Context, item tournament.Tournament) error {
	r.items[item.Key] = item
	return nil
}

func (r *fakeTournamentRepo) GetByKey(_ context.Context, key string) (tournament.Tournament, error) {
	item, ok := r.items[key]
	if !ok {
		return tournament.Tournament{}, errRepoNotFound
	}
	return item, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]tournament.Tournament, error) {
	out := make([]tournament.Tournament, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type fakeFixtureRepo struct {
	items     map[string]fixture.Fixture
	upsertErr error
}

func newFakeFixtureRepo() *fakeFixtureRepo {
	return &fakeFixtureRepo{items: make(map[string]fixture.Fixture)}
}

func (r *fakeFixtureRepo) Upsert(_ context.Context, item fixture.Fixture) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.items[item.EventKey] = item
	return nil
}

func (r *fakeFixtureRepo) GetByEventKey(_ context.Context, eventKey string) (fixture.Fixture, error) {
	item, ok := r.items[eventKey]
	if !ok {
		return fixture.Fixture{}, errRepoNotFound
	}
	return item, nil
}

func (r *fakeFixtureRepo) list(keep func(fixture.Fixture) bool) []fixture.Fixture {
	out := make([]fixture.Fixture, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventKey < out[j].EventKey })
	return out
}

func (r *fakeFixtureRepo) ListByDateRange(_ context.Context, startDay, endDay string) ([]fixture.Fixture, error) {
	return r.list(func(item fixture.Fixture) bool {
		return item.EventDate != "" && item.EventDate >= startDay && item.EventDate <= endDay
	}), nil
}

func (r *fakeFixtureRepo) ListByTournament(_ context.Context, tournamentKey string) ([]fixture.Fixture, error) {
	return r.list(func(item fixture.Fixture) bool { return item.TournamentKey == tournamentKey }), nil
}

func (r *fakeFixtureRepo) ListByPlayer(_ context.Context, playerKey string) ([]fixture.Fixture, error) {
	return r.list(func(item fixture.Fixture) bool {
		return item.FirstPlayerKey == playerKey || item.SecondPlayerKey == playerKey
	}), nil
}

func (r *fakeFixtureRepo) DistinctPlayerKeys(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, item := range r.items {
		for _, key := range item.PlayerKeys() {
			seen[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

type fakePlayerRepo struct {
	items     map[string]player.Player
	upsertErr error
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{items: make(map[string]player.Player)}
}

func (r *fakePlayerRepo) Upsert(_ context.Context, item player.Player) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.items[item.Key] = item
	return nil
}

func (r *fakePlayerRepo) GetByKey(_ context.Context, key string) (player.Player, error) {
	item, ok := r.items[key]
	if !ok {
		return player.Player{}, errRepoNotFound
	}
	return item, nil
}

func (r *fakePlayerRepo) List(_ context.Context) ([]player.Player, error) {
	out := make([]player.Player, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type fakeOddsRepo struct {
	items     map[string]odds.Odds
	upsertErr error
}

func newFakeOddsRepo() *fakeOddsRepo {
	return &fakeOddsRepo{items: make(map[string]odds.Odds)}
}

func (r *fakeOddsRepo) Upsert(_ context.Context, item odds.Odds) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.items[item.MatchKey] = item
	return nil
}

func (r *fakeOddsRepo) GetByMatchKey(_ context.Context, matchKey string) (odds.Odds, error) {
	item, ok := r.items[matchKey]
	if !ok {
		return odds.Odds{}, errRepoNotFound
	}
	return item, nil
}

func (r *fakeOddsRepo) ExistsForMatch(_ context.Context, matchKey string) (bool, error) {
	_, ok := r.items[matchKey]
	return ok, nil
}

type fakeH2HRepo struct {
	items     map[string]h2h.Record
	upsertErr error
}

func newFakeH2HRepo() *fakeH2HRepo {
	return &fakeH2HRepo{items: make(map[string]h2h.Record)}
}

func (r *fakeH2HRepo) Upsert(_ context.Context, item h2h.Record) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.items[item.Key] = item
	return nil
}

func (r *fakeH2HRepo) GetByPlayers(_ context.Context, playerA, playerB string) (h2h.Record, error) {
	item, ok := r.items[h2h.CompositeKey(playerA, playerB)]
	if !ok {
		return h2h.Record{}, errRepoNotFound
	}
	return item, nil
}

func fixtureWithPlayers(eventKey, firstPlayerKey, secondPlayerKey string) fixture.Fixture {
	return fixture.Fixture{
		EventKey:        eventKey,
		FirstPlayerKey:  firstPlayerKey,
		SecondPlayerKey: secondPlayerKey,
	}
}

type recordingNotifier struct {
	operations []string
	results    []IngestionResult
}

func (n *recordingNotifier) PublishIngestionCompleted(_ context.Context, operation string, result IngestionResult) error {
	n.operations = append(n.operations, operation)
	n.results = append(n.results, result)
	return nil
}
