package odds

import "github.com/courtline/tennis-data-api/internal/domain/document"

// KeyPrefix namespaces odds documents so their identifiers never
// collide with fixture event keys.
const KeyPrefix = "odds_"

// Odds is the odds snapshot for one match, keyed by the match key
// with the odds_ prefix.
type Odds struct {
	Key           string
	MatchKey      string
	TournamentKey string
	EventDate     string

	document.Meta
}

// KeyFor derives the stored identifier for a match key.
func KeyFor(matchKey string) string {
	return KeyPrefix + matchKey
}
