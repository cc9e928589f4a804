package event

import "github.com/courtline/tennis-data-api/internal/domain/document"

// Event is an upstream event type (ATP, WTA, challenger circuits and
// so on), keyed by the provider's event type key.
type Event struct {
	TypeKey string
	Name    string

	document.Meta
}
