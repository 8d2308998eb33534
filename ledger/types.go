/*
Package ledger provides the point ledger engine.

PURPOSE:
  This package owns the state of a single subject's point program: the
  ordered entry log, the running balance derived from it, the admin
  confirmation gate that authorizes mutations, and the monthly persistence
  boundary. Everything a front end needs goes through the operations here.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: One ledger line (description, signed point delta, date)
  - State: Balance + entries, the value persisted per period
  - EntryID: Position of an entry in the ledger
  - BasePoints: Every period starts at 100 points

DESIGN PRINCIPLES:
  1. Derived values are never stored: IsPositive is computed from Delta
  2. Balance always equals BasePoints + sum(deltas)
  3. State is owned by explicit objects, never package globals

USAGE:
  l := ledger.NewLedger()
  id := l.Append("Late", -2)
  _ = l.Edit(int(id), "Late (excused)", "3/4/2025", 0)
  snap := l.Snapshot()

SEE ALSO:
  - ledger.go: Append/Edit/Delete with the balance invariant
  - gate.go: Admin confirmation gate
  - session.go: Gate + ledger + persistence wired together
*/
package ledger

// BasePoints is the balance of a period with no entries.
const BasePoints = 100

// DateLayout is the short date format written on new entries.
const DateLayout = "1/2/2006"

// =============================================================================
// ENTRY - One ledger line
// =============================================================================

// EntryID identifies an entry by its position in the ledger.
type EntryID int

// Entry records a single point adjustment.
//
// Delta may be zero (a mid-band grade is still recorded). Date is free text:
// it is set on append and may be edited afterwards.
type Entry struct {
	Description string
	Delta       int
	Date        string
}

// IsPositive reports whether the entry adds points.
func (e Entry) IsPositive() bool {
	return e.Delta > 0
}

// =============================================================================
// STATE - Balance and entries of one period
// =============================================================================

// State is a read-only view of a ledger.
type State struct {
	Balance int
	Entries []Entry
}

// FreshState returns the state of a period that has no record yet.
func FreshState() State {
	return State{Balance: BasePoints, Entries: []Entry{}}
}

// ExpectedBalance recomputes the balance from the entries.
func (s State) ExpectedBalance() int {
	total := BasePoints
	for _, e := range s.Entries {
		total += e.Delta
	}
	return total
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	entries := make([]Entry, len(s.Entries))
	copy(entries, s.Entries)
	return State{Balance: s.Balance, Entries: entries}
}
