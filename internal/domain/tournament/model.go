package tournament

import "github.com/courtline/tennis-data-api/internal/domain/document"

// Tournament is keyed by the provider's tournament key.
type Tournament struct {
	Key          string
	Name         string
	EventTypeKey string
	Surface      string
	Country      string

	document.Meta
}
