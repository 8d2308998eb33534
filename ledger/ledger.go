/*
ledger.go - Ordered entry log with an incrementally maintained balance

PURPOSE:
  The Ledger holds the entries of the active period and the balance derived
  from them. It is the only place entries are created, changed or removed.

CRITICAL INVARIANT:
  balance == BasePoints + sum(entry.Delta) after every operation.

  The balance is adjusted incrementally, never replayed:
  - Append: balance += delta
  - Edit:   balance += newDelta - oldDelta
  - Delete: balance -= removed.Delta

  An operation that fails (bad index) changes nothing.

ORDERING:
  Insertion order is significant. It drives history display and the running
  total of the CSV export. Delete keeps the relative order of the rest.

CONCURRENCY:
  A Ledger is not safe for concurrent use. Callers serialize access (the
  HTTP layer holds a mutex around the session).

SEE ALSO:
  - types.go: Entry and State
  - session.go: Applies gated actions to a Ledger and persists it
*/
package ledger

import "time"

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the entry log and balance of one period.
type Ledger struct {
	balance int
	entries []Entry
	clock   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to date new entries.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithState seeds the ledger from a previously saved state.
func WithState(s State) Option {
	return func(l *Ledger) {
		c := s.Clone()
		l.balance = c.Balance
		l.entries = c.Entries
	}
}

// NewLedger creates a ledger at BasePoints with no entries.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		balance: BasePoints,
		entries: []Entry{},
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds an entry dated today and returns its position.
// The caller has already validated description and delta.
func (l *Ledger) Append(description string, delta int) EntryID {
	l.entries = append(l.entries, Entry{
		Description: description,
		Delta:       delta,
		Date:        l.clock().Format(DateLayout),
	})
	l.balance += delta
	return EntryID(len(l.entries) - 1)
}

// Edit replaces the entry at index and adjusts the balance by the delta
// difference.
func (l *Ledger) Edit(index int, description, date string, delta int) error {
	if !l.valid(index) {
		return &IndexError{Op: "edit", Index: index, Len: len(l.entries)}
	}

	diff := delta - l.entries[index].Delta
	l.entries[index] = Entry{Description: description, Delta: delta, Date: date}
	l.balance += diff
	return nil
}

// Delete removes the entry at index and takes its delta off the balance.
func (l *Ledger) Delete(index int) error {
	if !l.valid(index) {
		return &IndexError{Op: "delete", Index: index, Len: len(l.entries)}
	}

	removed := l.entries[index]
	l.entries = append(l.entries[:index:index], l.entries[index+1:]...)
	l.balance -= removed.Delta
	return nil
}

// Entry returns the entry at index.
func (l *Ledger) Entry(index int) (Entry, error) {
	if !l.valid(index) {
		return Entry{}, &IndexError{Op: "get", Index: index, Len: len(l.entries)}
	}
	return l.entries[index], nil
}

// Balance returns the current balance.
func (l *Ledger) Balance() int {
	return l.balance
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Snapshot returns a copy of the current state. Later mutations do not
// affect it.
func (l *Ledger) Snapshot() State {
	return State{Balance: l.balance, Entries: l.entries}.Clone()
}

// Verify checks the balance invariant.
func (l *Ledger) Verify() error {
	expected := State{Entries: l.entries}.ExpectedBalance()
	if l.balance != expected {
		return &DriftError{Balance: l.balance, Expected: expected}
	}
	return nil
}

func (l *Ledger) valid(index int) bool {
	return index >= 0 && index < len(l.entries)
}
