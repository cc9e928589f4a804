package document

import "time"

// Meta carries the fields every stored upstream document shares: the
// raw provider payload and the fetch/update bookkeeping timestamps.
type Meta struct {
	Raw       string
	FetchedAt time.Time
	UpdatedAt time.Time
}

func NewMeta(raw string, now time.Time) Meta {
	return Meta{
		Raw:       raw,
		FetchedAt: now,
		UpdatedAt: now,
	}
}

// StaleAfter reports whether the document's last fetch is older than
// the given TTL at the reference time. A document that was never
// fetched is always stale.
func (m Meta) StaleAfter(ttl time.Duration, now time.Time) bool {
	if m.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(m.FetchedAt) > ttl
}
