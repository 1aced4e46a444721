// Package checkpoint persists per-query results so large runs survive crashes
// and restarts without duplicate network calls.
package checkpoint

import "winesearcher/parser/internal/domain"

// Store is the durable, append-only record of (query → result) pairs. A nil
// record marks a query that was processed but yielded nothing, so every input
// query is accounted for exactly once. Concurrent writers against the same
// target are unsupported.
type Store interface {
	// Load returns all previously recorded results keyed by normalized query.
	Load() (map[string]*domain.Wine, error)

	// Append durably records a batch of results. Existing entries are never
	// rewritten.
	Append(results map[string]*domain.Wine) error

	Close() error
}
