package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/courtline/tennis-data-api/internal/platform/datewindow"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

type ingestTournamentsRequest struct {
	EventTypeKey string `json:"event_type_key" validate:"required"`
}

type ingestDateRangeRequest struct {
	DateStart string `json:"date_start" validate:"required,datetime=2006-01-02"`
	DateStop  string `json:"date_stop" validate:"required,datetime=2006-01-02"`
}

type ingestH2HRequest struct {
	FirstPlayerKey  string `json:"first_player_key" validate:"required"`
	SecondPlayerKey string `json:"second_player_key" validate:"required"`
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, payload any) bool {
	ctx := r.Context()
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return false
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return false
	}
	return true
}

func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestEvents")
	defer span.End()

	writeIngestionResult(ctx, w, h.ingestionService.IngestEvents(ctx))
}

func (h *Handler) IngestTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestTournaments")
	defer span.End()

	var req ingestTournamentsRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	writeIngestionResult(ctx, w, h.ingestionService.IngestTournaments(ctx, req.EventTypeKey))
}

func (h *Handler) IngestFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestFixtures")
	defer span.End()

	start, end, ok := h.decodeDateRange(w, r)
	if !ok {
		return
	}

	writeIngestionResult(ctx, w, h.ingestionService.IngestFixturesBatched(ctx, start, end))
}

func (h *Handler) IngestFixturesByTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestFixturesByTournament")
	defer span.End()

	tournamentKey := r.PathValue("tournamentKey")
	writeIngestionResult(ctx, w, h.ingestionService.IngestFixturesByTournament(ctx, tournamentKey))
}

func (h *Handler) IngestOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestOdds")
	defer span.End()

	start, end, ok := h.decodeDateRange(w, r)
	if !ok {
		return
	}

	writeIngestionResult(ctx, w, h.ingestionService.IngestOddsBatched(ctx, start, end))
}

func (h *Handler) IngestOddsForMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestOddsForMatch")
	defer span.End()

	matchKey := r.PathValue("matchKey")
	writeIngestionResult(ctx, w, h.ingestionService.IngestOddsForMatch(ctx, matchKey))
}

func (h *Handler) IngestPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestPlayer")
	defer span.End()

	playerKey := r.PathValue("playerKey")
	writeIngestionResult(ctx, w, h.ingestionService.IngestPlayer(ctx, playerKey))
}

func (h *Handler) SyncPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncPlayers")
	defer span.End()

	writeIngestionResult(ctx, w, h.ingestionService.SyncPlayersFromFixtures(ctx))
}

func (h *Handler) IngestH2H(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestH2H")
	defer span.End()

	var req ingestH2HRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	writeIngestionResult(ctx, w, h.h2hService.IngestH2H(ctx, req.FirstPlayerKey, req.SecondPlayerKey))
}

func (h *Handler) decodeDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	var req ingestDateRangeRequest
	if !h.decodeRequest(w, r, &req) {
		return time.Time{}, time.Time{}, false
	}

	start, err := datewindow.ParseDay(req.DateStart)
	if err != nil {
		writeError(r.Context(), w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return time.Time{}, time.Time{}, false
	}
	end, err := datewindow.ParseDay(req.DateStop)
	if err != nil {
		writeError(r.Context(), w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
