package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDataRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/events", handler.ListEvents)
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentKey}/fixtures", handler.ListFixturesByTournament)
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/players/{playerKey}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerKey}/fixtures", handler.ListFixturesByPlayer)
	mux.HandleFunc("GET /v1/matches/{matchKey}/odds", handler.GetOddsByMatch)
	mux.HandleFunc("GET /v1/h2h", handler.GetHeadToHead)
	mux.HandleFunc("POST /v1/verification/predictions", handler.VerifyPredictions)
}

func registerInternalIngestionRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}

	mux.Handle("POST /v1/internal/ingestion/events", guard(handler.IngestEvents))
	mux.Handle("POST /v1/internal/ingestion/tournaments", guard(handler.IngestTournaments))
	mux.Handle("POST /v1/internal/ingestion/fixtures", guard(handler.IngestFixtures))
	mux.Handle("POST /v1/internal/ingestion/tournaments/{tournamentKey}/fixtures", guard(handler.IngestFixturesByTournament))
	mux.Handle("POST /v1/internal/ingestion/odds", guard(handler.IngestOdds))
	mux.Handle("POST /v1/internal/ingestion/matches/{matchKey}/odds", guard(handler.IngestOddsForMatch))
	mux.Handle("POST /v1/internal/ingestion/players/{playerKey}", guard(handler.IngestPlayer))
	mux.Handle("POST /v1/internal/ingestion/players/sync", guard(handler.SyncPlayers))
	mux.Handle("POST /v1/internal/ingestion/h2h", guard(handler.IngestH2H))
}
