/*
errors.go - Error types for the ledger engine

ERROR CATEGORIES:
  1. Ledger errors - Bad entry positions, balance drift
  2. Gate errors - Wrong credential, unknown action
  3. Store errors - Unreadable persisted records

USAGE:
  if errors.Is(err, ledger.ErrIndexOutOfRange) { ... }

  var idxErr *ledger.IndexError
  if errors.As(err, &idxErr) {
      log.Printf("no entry %d (ledger has %d)", idxErr.Index, idxErr.Len)
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIndexOutOfRange is returned by Edit and Delete when no entry exists
	// at the given position. The ledger is left unchanged.
	ErrIndexOutOfRange = errors.New("entry index out of range")

	// ErrBalanceDrift is returned when the balance no longer equals
	// BasePoints plus the sum of all entry deltas.
	ErrBalanceDrift = errors.New("balance does not match entries")

	// ErrIncorrectCredential is returned when the admin code does not match.
	// The gate stays locked and keeps its pending action.
	ErrIncorrectCredential = errors.New("incorrect admin code")

	// ErrUnknownAction is returned when an action has no valid kind.
	ErrUnknownAction = errors.New("unknown action kind")

	// ErrMalformedRecord is returned by stores when a persisted record
	// cannot be decoded. Callers treat it as a missing record.
	ErrMalformedRecord = errors.New("malformed ledger record")

	// ErrEmptyDescription is returned when an entry has no description.
	ErrEmptyDescription = errors.New("entry description is empty")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IndexError reports an edit or delete on a missing entry.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: entry %d does not exist (ledger has %d entries)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// DriftError reports a balance that disagrees with its entries.
type DriftError struct {
	Balance  int
	Expected int
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("balance %d does not match entries (expected %d)", e.Balance, e.Expected)
}

func (e *DriftError) Unwrap() error {
	return ErrBalanceDrift
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrIncorrectCredential) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrEmptyDescription)
}
