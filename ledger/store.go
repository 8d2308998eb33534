/*
store.go - Persistence boundary for period ledgers

PURPOSE:
  Defines the interface between the ledger engine and durable storage.
  One record is kept per period key; saving overwrites it completely.

CONTRACT:
  Load:
    - (state, true, nil) when a record exists
    - (State{}, false, nil) when none exists; this is not an error
    - error wrapping ErrMalformedRecord when the record is unreadable

  Save:
    - Replaces any prior record under the key
    - Called synchronously after every successful mutation

IMPLEMENTATIONS:
  - store/sqlite: SQLite, one row per period
  - ledger/store: In-memory for tests and ephemeral sessions

SEE ALSO:
  - record.go: JSON wire format shared by implementations
  - session.go: Treats load failures as a fresh period
*/
package ledger

import "context"

// Store loads and saves period ledgers.
type Store interface {
	// Load returns the saved state for the period, if any.
	Load(ctx context.Context, key PeriodKey) (State, bool, error)

	// Save stores the state under the period, replacing any prior value.
	Save(ctx context.Context, key PeriodKey, state State) error
}
