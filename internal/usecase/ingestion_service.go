package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/courtline/tennis-data-api/internal/domain/document"
	"github.com/courtline/tennis-data-api/internal/domain/event"
	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/domain/tournament"
	"github.com/courtline/tennis-data-api/internal/platform/datewindow"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
	"github.com/courtline/tennis-data-api/internal/platform/pacing"
)

const defaultMaxBatchDays = 7

// IngestionNotifier pings downstream consumers after an ingestion
// run that wrote data.
type IngestionNotifier interface {
	PublishIngestionCompleted(ctx context.Context, operation string, result IngestionResult) error
}

type IngestionServiceDeps struct {
	Provider    TennisDataProvider
	Events      event.Repository
	Tournaments tournament.Repository
	Fixtures    fixture.Repository
	Players     player.Repository
	Odds        odds.Repository
	Pacer       pacing.Pacer
	Notifier    IngestionNotifier
	Logger      *logging.Logger

	MaxBatchDays   int
	PlayerFreshTTL time.Duration
	PlayerBulkTTL  time.Duration
	Now            func() time.Time
}

// IngestionService orchestrates all upstream-to-store flows. Every
// flow returns an IngestionResult instead of an error: partial
// progress is a first-class outcome, and callers decide how to map it
// onto their transport.
type IngestionService struct {
	provider    TennisDataProvider
	events      event.Repository
	tournaments tournament.Repository
	fixtures    fixture.Repository
	players     player.Repository
	odds        odds.Repository
	pacer       pacing.Pacer
	notifier    IngestionNotifier
	logger      *logging.Logger

	maxBatchDays   int
	playerFreshTTL time.Duration
	playerBulkTTL  time.Duration
	now            func() time.Time
}

func NewIngestionService(deps IngestionServiceDeps) *IngestionService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	pacer := deps.Pacer
	if pacer == nil {
		pacer = pacing.None()
	}
	maxBatchDays := deps.MaxBatchDays
	if maxBatchDays < 1 {
		maxBatchDays = defaultMaxBatchDays
	}
	playerFreshTTL := deps.PlayerFreshTTL
	if playerFreshTTL <= 0 {
		playerFreshTTL = player.FreshTTL
	}
	playerBulkTTL := deps.PlayerBulkTTL
	if playerBulkTTL <= 0 {
		playerBulkTTL = player.BulkSyncTTL
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &IngestionService{
		provider:       deps.Provider,
		events:         deps.Events,
		tournaments:    deps.Tournaments,
		fixtures:       deps.Fixtures,
		players:        deps.Players,
		odds:           deps.Odds,
		pacer:          pacer,
		notifier:       deps.Notifier,
		logger:         logger,
		maxBatchDays:   maxBatchDays,
		playerFreshTTL: playerFreshTTL,
		playerBulkTTL:  playerBulkTTL,
		now:            now,
	}
}

func (s *IngestionService) IngestEvents(ctx context.Context) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestEvents")
	defer span.End()

	envelope, err := s.provider.GetEvents(ctx)
	if err != nil {
		return s.providerFailure(ctx, "events", err, false)
	}
	if !envelope.IsSuccess() {
		s.logger.ErrorContext(ctx, "provider returned unsuccessful response", "operation", "events")
		return FailureResult("API Tennis returned unsuccessful response for events", ErrorTypeAPI)
	}

	records := resultRecords(envelope.Result)
	if len(records) == 0 {
		return SuccessResult(0, "No events found in API response")
	}

	now := s.now()
	count := 0
	for _, record := range records {
		item, ok := mapEvent(record, now)
		if !ok {
			continue
		}
		if err := s.events.Upsert(ctx, item); err != nil {
			return FailureResult("Error ingesting events: "+err.Error(), ErrorTypeUnknown)
		}
		count++
	}

	s.logger.InfoContext(ctx, "ingested events", "count", count)
	return SuccessResult(count, fmt.Sprintf("Ingested %d events", count))
}

func (s *IngestionService) IngestTournaments(ctx context.Context, eventTypeKey string) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestTournaments")
	defer span.End()

	envelope, err := s.provider.GetTournaments(ctx, eventTypeKey)
	if err != nil {
		return s.providerFailure(ctx, "tournaments", err, false)
	}
	if !envelope.IsSuccess() {
		s.logger.ErrorContext(ctx, "provider returned unsuccessful response", "operation", "tournaments")
		return FailureResult("API Tennis returned unsuccessful response for tournaments", ErrorTypeAPI)
	}

	records := resultRecords(envelope.Result)
	if len(records) == 0 {
		return SuccessResult(0, "No tournaments found in API response")
	}

	now := s.now()
	count := 0
	for _, record := range records {
		item, ok := mapTournament(record, now)
		if !ok {
			continue
		}
		if err := s.tournaments.Upsert(ctx, item); err != nil {
			return FailureResult("Error ingesting tournaments: "+err.Error(), ErrorTypeUnknown)
		}
		count++
	}

	s.logger.InfoContext(ctx, "ingested tournaments", "count", count, "event_type_key", eventTypeKey)
	return SuccessResult(count, fmt.Sprintf("Ingested %d tournaments", count))
}

func (s *IngestionService) IngestFixtures(ctx context.Context, start, end time.Time) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestFixtures")
	defer span.End()

	envelope, err := s.provider.GetFixtures(ctx, start.Format(datewindow.DayFormat), end.Format(datewindow.DayFormat))
	if err != nil {
		return s.providerFailure(ctx, "fixtures", err, true)
	}
	return s.storeFixtures(ctx, envelope)
}

func (s *IngestionService) IngestFixturesByTournament(ctx context.Context, tournamentKey string) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestFixturesByTournament")
	defer span.End()

	tournamentKey = strings.TrimSpace(tournamentKey)
	if tournamentKey == "" {
		return FailureResult("tournament key is required", ErrorTypeUnknown)
	}

	envelope, err := s.provider.GetFixturesByTournament(ctx, tournamentKey)
	if err != nil {
		return s.providerFailure(ctx, "fixtures", err, false)
	}
	return s.storeFixtures(ctx, envelope)
}

func (s *IngestionService) storeFixtures(ctx context.Context, envelope ProviderEnvelope) IngestionResult {
	if !envelope.IsSuccess() {
		s.logger.ErrorContext(ctx, "provider returned unsuccessful response", "operation", "fixtures")
		return FailureResult("API Tennis returned unsuccessful response for fixtures", ErrorTypeAPI)
	}

	records := resultRecords(envelope.Result)
	if len(records) == 0 {
		return SuccessResult(0, "No fixtures found in API response")
	}

	now := s.now()
	count := 0
	for _, record := range records {
		item, ok := mapFixture(record, now)
		if !ok {
			continue
		}
		if err := s.fixtures.Upsert(ctx, item); err != nil {
			return FailureResult("Error ingesting fixtures: "+err.Error(), ErrorTypeUnknown)
		}
		count++
	}

	s.logger.InfoContext(ctx, "ingested fixtures", "count", count)
	return SuccessResult(count, fmt.Sprintf("Ingested %d fixtures", count))
}

// IngestFixturesBatched splits large ranges into windows and ingests
// them sequentially. Windows that fail do not roll back earlier ones.
func (s *IngestionService) IngestFixturesBatched(ctx context.Context, start, end time.Time) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestFixturesBatched")
	defer span.End()

	result := s.runBatched(ctx, "fixtures", start, end, s.IngestFixtures)
	s.notifyCompleted(ctx, "fixtures_batched", result)
	return result
}

// IngestOddsBatched is the odds counterpart of IngestFixturesBatched.
func (s *IngestionService) IngestOddsBatched(ctx context.Context, start, end time.Time) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestOddsBatched")
	defer span.End()

	result := s.runBatched(ctx, "odds records", start, end, s.IngestOdds)
	s.notifyCompleted(ctx, "odds_batched", result)
	return result
}

func (s *IngestionService) runBatched(ctx context.Context, noun string, start, end time.Time, ingest func(context.Context, time.Time, time.Time) IngestionResult) IngestionResult {
	windows, err := datewindow.Split(start, end, s.maxBatchDays)
	if err != nil {
		return FailureResult("Invalid date range: "+err.Error(), ErrorTypeInvalidRange)
	}

	if len(windows) == 1 {
		return ingest(ctx, windows[0].Start, windows[0].End)
	}

	s.logger.InfoContext(ctx, "batched ingestion",
		"noun", noun,
		"start", windows[0].StartDay(),
		"end", windows[len(windows)-1].EndDay(),
		"batches", len(windows),
	)

	totalCount := 0
	var batchErrors []string
	for i, window := range windows {
		if ctx.Err() != nil {
			batchErrors = append(batchErrors, fmt.Sprintf("Batch %d (%s): %v", i+1, window, ctx.Err()))
			break
		}

		batchResult := ingest(ctx, window.Start, window.End)
		if batchResult.IsSuccess() {
			totalCount += batchResult.Count
			continue
		}
		batchErrors = append(batchErrors, fmt.Sprintf("Batch %d (%s): %s", i+1, window, batchResult.Message))
	}

	switch {
	case len(batchErrors) == 0:
		return SuccessResult(totalCount, fmt.Sprintf("Ingested %d %s in %d batches", totalCount, noun, len(windows)))
	case totalCount > 0:
		return PartialSuccessResult(totalCount, fmt.Sprintf("Partial success: %d %s ingested, %d batch errors: %s",
			totalCount, noun, len(batchErrors), strings.Join(batchErrors, "; ")))
	default:
		return FailureResult("All batches failed: "+strings.Join(batchErrors, "; "), ErrorTypeAPI)
	}
}

// IngestPlayer fetches one player profile, skipping the upstream call
// entirely when the stored profile is still fresh.
func (s *IngestionService) IngestPlayer(ctx context.Context, playerKey string) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestPlayer")
	defer span.End()

	playerKey = strings.TrimSpace(playerKey)
	if playerKey == "" {
		return FailureResult("player key is required", ErrorTypeUnknown)
	}

	now := s.now()
	existing, err := s.players.GetByKey(ctx, playerKey)
	if err == nil && !existing.StaleAfter(s.playerFreshTTL, now) {
		s.logger.DebugContext(ctx, "player fetched recently, skipping", "player_key", playerKey)
		return SuccessResult(0, "Player already up-to-date (fetched within 24 hours)")
	}

	envelope, err := s.provider.GetPlayer(ctx, playerKey)
	if err != nil {
		return s.providerFailure(ctx, "player "+playerKey, err, false)
	}
	if !envelope.IsSuccess() {
		s.logger.ErrorContext(ctx, "provider returned unsuccessful response", "operation", "player", "player_key", playerKey)
		return FailureResult("API Tennis returned unsuccessful response for player "+playerKey, ErrorTypeAPI)
	}

	records := resultRecords(envelope.Result)
	if len(records) == 0 {
		s.logger.WarnContext(ctx, "no player data found", "player_key", playerKey)
		return SuccessResult(0, "No player data found for "+playerKey)
	}

	item, ok := mapPlayer(playerKey, records[0], s.now())
	if !ok {
		return SuccessResult(0, "No player data found for "+playerKey)
	}
	if err := s.players.Upsert(ctx, item); err != nil {
		return FailureResult("Error ingesting player: "+err.Error(), ErrorTypeUnknown)
	}

	name := item.Name
	if name == "" {
		name = playerKey
	}
	s.logger.InfoContext(ctx, "ingested player", "player_key", playerKey, "player_name", name)
	return SuccessResult(1, "Ingested player: "+name)
}

// SyncPlayersFromFixtures walks every player key referenced by stored
// fixtures and refreshes stale profiles, pacing upstream calls and
// tolerating per-player failures.
func (s *IngestionService) SyncPlayersFromFixtures(ctx context.Context) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.SyncPlayersFromFixtures")
	defer span.End()

	playerKeys, err := s.fixtures.DistinctPlayerKeys(ctx)
	if err != nil {
		return FailureResult("Error syncing players: "+err.Error(), ErrorTypeUnknown)
	}
	if len(playerKeys) == 0 {
		return SuccessResult(0, "No players to sync - no fixtures found")
	}

	now := s.now()
	existingPlayers, err := s.players.List(ctx)
	if err != nil {
		return FailureResult("Error syncing players: "+err.Error(), ErrorTypeUnknown)
	}
	upToDate := make(map[string]struct{}, len(existingPlayers))
	for _, existing := range existingPlayers {
		if !existing.StaleAfter(s.playerBulkTTL, now) {
			upToDate[existing.Key] = struct{}{}
		}
	}

	pending := make([]string, 0, len(playerKeys))
	for _, key := range playerKeys {
		if _, ok := upToDate[key]; ok {
			continue
		}
		pending = append(pending, key)
	}
	if len(pending) == 0 {
		return SuccessResult(0, fmt.Sprintf("All %d players already up-to-date", len(upToDate)))
	}
	sort.Strings(pending)

	s.logger.InfoContext(ctx, "player sync starting",
		"pending", len(pending),
		"up_to_date", len(upToDate),
	)

	fetched := 0
	failed := 0
	noData := 0
	total := len(pending)
	for processed, playerKey := range pending {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "player sync interrupted", "processed", processed, "error", ctx.Err())
			break
		}

		switch s.syncOnePlayer(ctx, playerKey) {
		case playerSyncFetched:
			fetched++
		case playerSyncNoData:
			noData++
		default:
			failed++
		}

		if (processed+1)%50 == 0 || processed+1 == total {
			s.logger.InfoContext(ctx, "player sync progress",
				"processed", processed+1,
				"total", total,
				"fetched", fetched,
				"failed", failed,
			)
		}

		if processed+1 < total {
			if err := s.pacer.Wait(ctx); err != nil {
				s.logger.WarnContext(ctx, "player sync interrupted during pacing", "error", err)
				break
			}
		}
	}

	message := fmt.Sprintf("Synced %d players (fetched: %d, failed: %d, skipped %d up-to-date)",
		total, fetched, failed, len(upToDate))
	s.logger.InfoContext(ctx, "player sync finished",
		"fetched", fetched, "failed", failed, "no_data", noData, "up_to_date", len(upToDate))

	if failed > 0 && fetched > 0 {
		return PartialSuccessResult(fetched, message)
	}
	return SuccessResult(fetched, message)
}

type playerSyncOutcome int

const (
	playerSyncFetched playerSyncOutcome = iota
	playerSyncFailed
	playerSyncNoData
)

// syncOnePlayer fetches and stores a single player. A successful
// envelope with no usable record is not a failure: the provider simply
// has no profile for that key, so the sync moves on without escalating
// the run to partial success.
func (s *IngestionService) syncOnePlayer(ctx context.Context, playerKey string) playerSyncOutcome {
	envelope, err := s.provider.GetPlayer(ctx, playerKey)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch player", "player_key", playerKey, "error", err)
		return playerSyncFailed
	}
	if !envelope.IsSuccess() {
		return playerSyncFailed
	}
	records := resultRecords(envelope.Result)
	if len(records) == 0 {
		s.logger.DebugContext(ctx, "no player data returned", "player_key", playerKey)
		return playerSyncNoData
	}
	item, ok := mapPlayer(playerKey, records[0], s.now())
	if !ok {
		s.logger.DebugContext(ctx, "player record has no usable fields", "player_key", playerKey)
		return playerSyncNoData
	}
	if err := s.players.Upsert(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "failed to store player", "player_key", playerKey, "error", err)
		return playerSyncFailed
	}
	return playerSyncFetched
}

// IngestOdds handles both result shapes the provider sends: an array
// of records carrying their own match key, and an object keyed by
// match key.
func (s *IngestionService) IngestOdds(ctx context.Context, start, end time.Time) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestOdds")
	defer span.End()

	envelope, err := s.provider.GetOdds(ctx, start.Format(datewindow.DayFormat), end.Format(datewindow.DayFormat))
	if err != nil {
		return s.providerFailure(ctx, "odds", err, true)
	}
	if !envelope.IsSuccess() {
		s.logger.ErrorContext(ctx, "provider returned unsuccessful response", "operation", "odds")
		return FailureResult("API Tennis returned unsuccessful response for odds", ErrorTypeAPI)
	}
	if envelope.Result == nil {
		return SuccessResult(0, "No odds found in API response")
	}

	now := s.now()
	count := 0
	switch result := envelope.Result.(type) {
	case []any:
		for _, item := range result {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			matchKey := textField(record, "match_key", "event_key")
			if matchKey == "" {
				continue
			}
			if s.storeOdds(ctx, matchKey, record, now) {
				count++
			}
		}
	case map[string]any:
		matchKeys := make([]string, 0, len(result))
		for matchKey := range result {
			matchKeys = append(matchKeys, matchKey)
		}
		sort.Strings(matchKeys)
		for _, matchKey := range matchKeys {
			record, ok := result[matchKey].(map[string]any)
			if !ok {
				continue
			}
			if s.storeOdds(ctx, matchKey, record, now) {
				count++
			}
		}
	default:
		s.logger.WarnContext(ctx, "unexpected odds response format", "type", fmt.Sprintf("%T", envelope.Result))
		return SuccessResult(0, "No odds found - unexpected response format")
	}

	s.logger.InfoContext(ctx, "ingested odds", "count", count)
	return SuccessResult(count, fmt.Sprintf("Ingested %d odds records", count))
}

func (s *IngestionService) storeOdds(ctx context.Context, matchKey string, record map[string]any, now time.Time) bool {
	item, ok := mapOdds(matchKey, record, now)
	if !ok {
		return false
	}
	if err := s.odds.Upsert(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "failed to store odds", "match_key", matchKey, "error", err)
		return false
	}
	return true
}

// IngestOddsForMatch fetches odds for one match, skipping the
// upstream call when odds for the match are already stored.
func (s *IngestionService) IngestOddsForMatch(ctx context.Context, matchKey string) IngestionResult {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.IngestOddsForMatch")
	defer span.End()

	matchKey = strings.TrimSpace(matchKey)
	if matchKey == "" {
		return FailureResult("match key is required", ErrorTypeUnknown)
	}

	exists, err := s.odds.ExistsForMatch(ctx, matchKey)
	if err != nil {
		return FailureResult("Error ingesting odds: "+err.Error(), ErrorTypeUnknown)
	}
	if exists {
		s.logger.DebugContext(ctx, "odds already stored, skipping", "match_key", matchKey)
		return SuccessResult(0, "Odds already ingested for match "+matchKey)
	}

	envelope, err := s.provider.GetOddsByMatch(ctx, matchKey)
	if err != nil {
		return s.providerFailure(ctx, "odds for match "+matchKey, err, false)
	}
	if !envelope.IsSuccess() {
		return FailureResult("API Tennis returned unsuccessful response for odds", ErrorTypeAPI)
	}
	if envelope.Result == nil {
		return SuccessResult(0, "No odds found for match "+matchKey)
	}

	now := s.now()
	record := oddsRecordForMatch(envelope.Result, matchKey)
	if record == nil {
		// Store the whole result payload so the data is not lost even
		// when the shape is unrecognized.
		raw, encodeErr := sonic.MarshalString(envelope.Result)
		if encodeErr != nil {
			return SuccessResult(0, "No odds found for match "+matchKey)
		}
		item := odds.Odds{
			Key:      odds.KeyFor(matchKey),
			MatchKey: matchKey,
			Meta:     document.NewMeta(raw, now),
		}
		if err := s.odds.Upsert(ctx, item); err != nil {
			return FailureResult("Error ingesting odds: "+err.Error(), ErrorTypeUnknown)
		}
		return SuccessResult(1, "Ingested odds for match "+matchKey)
	}

	if !s.storeOdds(ctx, matchKey, record, now) {
		return FailureResult("Error ingesting odds for match "+matchKey, ErrorTypeUnknown)
	}
	return SuccessResult(1, "Ingested odds for match "+matchKey)
}

// oddsRecordForMatch resolves the per-match record from either result
// shape.
func oddsRecordForMatch(result any, matchKey string) map[string]any {
	switch shaped := result.(type) {
	case map[string]any:
		if record, ok := shaped[matchKey].(map[string]any); ok {
			return record
		}
	case []any:
		for _, item := range shaped {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if textField(record, "match_key", "event_key") == matchKey {
				return record
			}
		}
	}
	return nil
}

func (s *IngestionService) providerFailure(ctx context.Context, operation string, err error, dateRanged bool) IngestionResult {
	if statusErr, ok := AsProviderStatusError(err); ok {
		s.logger.ErrorContext(ctx, "provider HTTP error",
			"operation", operation,
			"status", statusErr.StatusCode,
		)
		result := FailureForStatus(statusErr.StatusCode, dateRanged)
		result.Message = fmt.Sprintf("Failed to fetch %s - %s", operation, result.Message)
		return result
	}

	s.logger.ErrorContext(ctx, "ingestion failed", "operation", operation, "error", err)
	return FailureResult(fmt.Sprintf("Error ingesting %s: %v", operation, err), ErrorTypeUnknown)
}

func (s *IngestionService) notifyCompleted(ctx context.Context, operation string, result IngestionResult) {
	if s.notifier == nil || !result.IsSuccess() || result.Count == 0 {
		return
	}
	if err := s.notifier.PublishIngestionCompleted(ctx, operation, result); err != nil {
		s.logger.WarnContext(ctx, "failed to publish ingestion notification", "operation", operation, "error", err)
	}
}
