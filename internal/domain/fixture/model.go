package fixture

import (
	"strings"

	"github.com/courtline/tennis-data-api/internal/domain/document"
)

const (
	StatusFinished  = "Finished"
	StatusCancelled = "Cancelled"
	StatusRetired   = "Retired"
	StatusWalkover  = "Walkover"
)

// Fixture is one scheduled or completed match, keyed by the
// provider's event key. EventDate holds the canonical YYYY-MM-DD day
// when the upstream value parses, otherwise it is empty.
type Fixture struct {
	EventKey         string
	TournamentKey    string
	EventDate        string
	FirstPlayerKey   string
	FirstPlayerName  string
	SecondPlayerKey  string
	SecondPlayerName string
	Status           string
	Winner           string
	FinalResult      string

	document.Meta
}

// PlayerKeys returns the non-empty player keys of the fixture.
func (f Fixture) PlayerKeys() []string {
	keys := make([]string, 0, 2)
	if f.FirstPlayerKey != "" {
		keys = append(keys, f.FirstPlayerKey)
	}
	if f.SecondPlayerKey != "" {
		keys = append(keys, f.SecondPlayerKey)
	}
	return keys
}

func IsFinishedStatus(status string) bool {
	switch strings.TrimSpace(status) {
	case StatusFinished, StatusRetired, StatusWalkover:
		return true
	default:
		return false
	}
}
