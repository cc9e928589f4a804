package player

import (
	"time"

	"github.com/courtline/tennis-data-api/internal/domain/document"
)

// Freshness windows for stored player profiles. Single-player
// ingestion refreshes anything older than FreshTTL; the bulk sync
// from fixtures uses the wider BulkSyncTTL to keep its upstream call
// volume down.
const (
	FreshTTL    = 24 * time.Hour
	BulkSyncTTL = 14 * 24 * time.Hour
)

// Player is keyed by the provider's player key. Rank is nil when the
// upstream value is absent or unparseable.
type Player struct {
	Key     string
	Name    string
	Country string
	Hand    string
	Rank    *int

	document.Meta
}
