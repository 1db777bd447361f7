// Package overlay stores locally-authored metadata keyed by remote item
// ID: a display name override, an access password for protected files,
// and a grouping category for committee pages. The three fields live in
// one record because both consumers (the committee grouping and the
// protected-file gate) read through the same id lookup.
package overlay

import "context"

// Record is the overlay metadata for one remote item. Zero-value fields
// mean "no override".
type Record struct {
	DisplayName string `json:"displayName,omitempty"`
	Password    string `json:"password,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Source supplies overlay records for a set of remote item IDs.
// Implementations must return a (possibly empty) map for IDs with no
// record rather than erroring.
type Source interface {
	Lookup(ctx context.Context, ids []string) (map[string]Record, error)
}

// Static is a Source backed by a fixed map, for tests and for callers
// that already hold the records.
type Static map[string]Record

// Lookup returns the subset of the static map covering ids.
func (s Static) Lookup(_ context.Context, ids []string) (map[string]Record, error) {
	out := make(map[string]Record, len(ids))

	for _, id := range ids {
		if rec, ok := s[id]; ok {
			out[id] = rec
		}
	}

	return out, nil
}
