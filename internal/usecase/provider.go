package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
)

// TennisDataProvider is the upstream data source for all ingestion
// flows.
type TennisDataProvider interface {
	GetEvents(ctx context.Context) (ProviderEnvelope, error)
	GetTournaments(ctx context.Context, eventTypeKey string) (ProviderEnvelope, error)
	GetFixtures(ctx context.Context, dateStart, dateStop string) (ProviderEnvelope, error)
	GetFixturesByTournament(ctx context.Context, tournamentKey string) (ProviderEnvelope, error)
	GetPlayer(ctx context.Context, playerKey string) (ProviderEnvelope, error)
	GetOdds(ctx context.Context, dateStart, dateStop string) (ProviderEnvelope, error)
	GetOddsByMatch(ctx context.Context, matchKey string) (ProviderEnvelope, error)
	GetH2H(ctx context.Context, firstPlayerKey, secondPlayerKey string) (ProviderEnvelope, error)
}

// ProviderEnvelope is the provider's response wrapper. Success stays
// loosely typed: the provider sends a JSON number, and anything other
// than the number 1 means the call did not succeed. Result is the
// payload, usually an array of records but object-shaped for some
// odds responses.
type ProviderEnvelope struct {
	Success any `json:"success"`
	Result  any `json:"result"`
}

// IsSuccess reports whether the envelope carries the provider's
// success flag. Only the JSON number 1 counts; stringified flags and
// absent fields do not.
func (e ProviderEnvelope) IsSuccess() bool {
	num, ok := e.Success.(float64)
	return ok && num == 1
}

// ProviderStatusError reports a non-2xx provider response.
type ProviderStatusError struct {
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider status=%d", e.StatusCode)
	}
	return fmt.Sprintf("provider status=%d body=%s", e.StatusCode, e.Body)
}

// AsProviderStatusError extracts a ProviderStatusError from an error
// chain.
func AsProviderStatusError(err error) (*ProviderStatusError, bool) {
	var statusErr *ProviderStatusError
	if stderrors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
