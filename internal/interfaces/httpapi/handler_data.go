package httpapi

import (
	"net/http"
	"time"

	"github.com/courtline/tennis-data-api/internal/domain/event"
	"github.com/courtline/tennis-data-api/internal/domain/fixture"
	"github.com/courtline/tennis-data-api/internal/domain/odds"
	"github.com/courtline/tennis-data-api/internal/domain/player"
	"github.com/courtline/tennis-data-api/internal/domain/tournament"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type eventDTO struct {
	EventTypeKey  string `json:"event_type_key"`
	EventTypeName string `json:"event_type_name"`
	FetchedAt     string `json:"fetched_at,omitempty"`
}

type tournamentDTO struct {
	TournamentKey string `json:"tournament_key"`
	Name          string `json:"name"`
	EventTypeKey  string `json:"event_type_key,omitempty"`
	Surface       string `json:"surface,omitempty"`
	Country       string `json:"country,omitempty"`
	FetchedAt     string `json:"fetched_at,omitempty"`
}

type fixtureDTO struct {
	EventKey         string `json:"event_key"`
	TournamentKey    string `json:"tournament_key,omitempty"`
	EventDate        string `json:"event_date,omitempty"`
	FirstPlayerKey   string `json:"first_player_key,omitempty"`
	FirstPlayerName  string `json:"first_player_name,omitempty"`
	SecondPlayerKey  string `json:"second_player_key,omitempty"`
	SecondPlayerName string `json:"second_player_name,omitempty"`
	Status           string `json:"status,omitempty"`
	Winner           string `json:"winner,omitempty"`
	FinalResult      string `json:"final_result,omitempty"`
	FetchedAt        string `json:"fetched_at,omitempty"`
}

type playerDTO struct {
	PlayerKey string `json:"player_key"`
	Name      string `json:"name,omitempty"`
	Country   string `json:"country,omitempty"`
	Hand      string `json:"hand,omitempty"`
	Rank      *int   `json:"rank,omitempty"`
	FetchedAt string `json:"fetched_at,omitempty"`
}

type oddsDTO struct {
	MatchKey      string `json:"match_key"`
	TournamentKey string `json:"tournament_key,omitempty"`
	EventDate     string `json:"event_date,omitempty"`
	Raw           string `json:"raw,omitempty"`
	FetchedAt     string `json:"fetched_at,omitempty"`
}

type h2hSummaryDTO struct {
	FirstPlayerKey   string       `json:"first_player_key"`
	FirstPlayerName  string       `json:"first_player_name"`
	SecondPlayerKey  string       `json:"second_player_key"`
	SecondPlayerName string       `json:"second_player_name"`
	FirstPlayerWins  int          `json:"first_player_wins"`
	SecondPlayerWins int          `json:"second_player_wins"`
	Matches          []fixtureDTO `json:"matches"`
}

func timestampDTO(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func eventToDTO(item event.Event) eventDTO {
	return eventDTO{
		EventTypeKey:  item.TypeKey,
		EventTypeName: item.Name,
		FetchedAt:     timestampDTO(item.FetchedAt),
	}
}

func tournamentToDTO(item tournament.Tournament) tournamentDTO {
	return tournamentDTO{
		TournamentKey: item.Key,
		Name:          item.Name,
		EventTypeKey:  item.EventTypeKey,
		Surface:       item.Surface,
		Country:       item.Country,
		FetchedAt:     timestampDTO(item.FetchedAt),
	}
}

func fixtureToDTO(item fixture.Fixture) fixtureDTO {
	return fixtureDTO{
		EventKey:         item.EventKey,
		TournamentKey:    item.TournamentKey,
		EventDate:        item.EventDate,
		FirstPlayerKey:   item.FirstPlayerKey,
		FirstPlayerName:  item.FirstPlayerName,
		SecondPlayerKey:  item.SecondPlayerKey,
		SecondPlayerName: item.SecondPlayerName,
		Status:           item.Status,
		Winner:           item.Winner,
		FinalResult:      item.FinalResult,
		FetchedAt:        timestampDTO(item.FetchedAt),
	}
}

func fixturesToDTO(items []fixture.Fixture) []fixtureDTO {
	out := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, fixtureToDTO(item))
	}
	return out
}

func playerToDTO(item player.Player) playerDTO {
	return playerDTO{
		PlayerKey: item.Key,
		Name:      item.Name,
		Country:   item.Country,
		Hand:      item.Hand,
		Rank:      item.Rank,
		FetchedAt: timestampDTO(item.FetchedAt),
	}
}

func oddsToDTO(item odds.Odds) oddsDTO {
	return oddsDTO{
		MatchKey:      item.MatchKey,
		TournamentKey: item.TournamentKey,
		EventDate:     item.EventDate,
		Raw:           item.Raw,
		FetchedAt:     timestampDTO(item.FetchedAt),
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEvents")
	defer span.End()

	items, err := h.dataService.ListEvents(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list events failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]eventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, eventToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.dataService.ListTournaments(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]tournamentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tournamentToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	query := r.URL.Query()
	items, err := h.dataService.FixturesByDateRange(ctx, query.Get("date_start"), query.Get("date_stop"))
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesToDTO(items))
}

func (h *Handler) ListFixturesByTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixturesByTournament")
	defer span.End()

	tournamentKey := r.PathValue("tournamentKey")
	items, err := h.dataService.FixturesByTournament(ctx, tournamentKey)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures by tournament failed", "tournament_key", tournamentKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesToDTO(items))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerKey := r.PathValue("playerKey")
	item, err := h.dataService.PlayerByKey(ctx, playerKey)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_key", playerKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func (h *Handler) ListFixturesByPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixturesByPlayer")
	defer span.End()

	playerKey := r.PathValue("playerKey")
	items, err := h.dataService.FixturesByPlayer(ctx, playerKey)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures by player failed", "player_key", playerKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesToDTO(items))
}

func (h *Handler) GetOddsByMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOddsByMatch")
	defer span.End()

	matchKey := r.PathValue("matchKey")
	item, err := h.dataService.OddsByMatch(ctx, matchKey)
	if err != nil {
		h.logger.WarnContext(ctx, "get odds failed", "match_key", matchKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, oddsToDTO(item))
}

func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeadToHead")
	defer span.End()

	query := r.URL.Query()
	summary, err := h.dataService.HeadToHead(ctx, query.Get("first_player_key"), query.Get("second_player_key"))
	if err != nil {
		h.logger.WarnContext(ctx, "head-to-head failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, headToHeadToDTO(summary))
}

func headToHeadToDTO(summary usecase.H2HSummary) h2hSummaryDTO {
	return h2hSummaryDTO{
		FirstPlayerKey:   summary.FirstPlayerKey,
		FirstPlayerName:  summary.FirstPlayerName,
		SecondPlayerKey:  summary.SecondPlayerKey,
		SecondPlayerName: summary.SecondPlayerName,
		FirstPlayerWins:  summary.FirstPlayerWins,
		SecondPlayerWins: summary.SecondPlayerWins,
		Matches:          fixturesToDTO(summary.Matches),
	}
}
