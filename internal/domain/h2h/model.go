package h2h

import (
	"time"

	"github.com/courtline/tennis-data-api/internal/domain/document"
)

// Record is the head-to-head summary between two players. The stored
// key is order-independent: the lexicographically smaller player key
// always comes first, so (A, B) and (B, A) resolve to one record.
type Record struct {
	Key              string
	FirstPlayerKey   string
	SecondPlayerKey  string
	FirstPlayerName  string
	SecondPlayerName string
	FirstPlayerWins  int
	SecondPlayerWins int
	LastFetched      time.Time

	document.Meta
}

// CompositeKey canonicalizes a player pair into the stored key.
func CompositeKey(playerA, playerB string) string {
	if playerB < playerA {
		playerA, playerB = playerB, playerA
	}
	return playerA + "_" + playerB
}
