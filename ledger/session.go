/*
session.go - One running session of the point program

PURPOSE:
  Wires the pieces together the way a front end uses them:

    collaborator ──Action──▶ Gate ──authorized──▶ Session.Execute
                                                    │
                                       Ledger.Append/Edit/Delete
                                                    │
                                           Store.Save (sync)

STARTUP:
  OpenSession derives the period key from the clock and loads that
  period's record. A missing record starts a fresh ledger at BasePoints.
  An unreadable record, or a store that fails to load, does the same and
  logs a warning: the session must stay usable.

PERSISTENCE FAILURES:
  A failed save never undoes the mutation. Result.PersistErr carries the
  failure back to the collaborator as a warning.

CONCURRENCY:
  Not safe for concurrent use; the collaborator serializes calls.
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SessionConfig configures OpenSession.
type SessionConfig struct {
	Store  Store
	Secret string

	// Clock defaults to time.Now.
	Clock func() time.Time

	// Period overrides the period derived from Clock.
	Period PeriodKey

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Session owns the ledger and gate of the active period.
type Session struct {
	period PeriodKey
	ledger *Ledger
	gate   *Gate
	store  Store
	log    *zap.Logger
}

// OpenSession loads the active period and returns a locked session.
func OpenSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	period := cfg.Period
	if period == "" {
		period = PeriodFor(cfg.Clock())
	}

	s := &Session{
		period: period,
		store:  cfg.Store,
		log:    cfg.Logger.With(zap.String("period", string(period))),
	}

	state := s.load(ctx)
	s.ledger = NewLedger(WithClock(cfg.Clock), WithState(state))
	s.gate = NewGate(cfg.Secret, s)

	s.log.Info("session opened",
		zap.Int("balance", state.Balance),
		zap.Int("entries", len(state.Entries)))
	return s, nil
}

func (s *Session) load(ctx context.Context) State {
	state, ok, err := s.store.Load(ctx, s.period)
	switch {
	case errors.Is(err, ErrMalformedRecord):
		s.log.Warn("discarding malformed record, starting fresh period", zap.Error(err))
		return FreshState()
	case err != nil:
		s.log.Warn("failed to load period, starting fresh", zap.Error(err))
		return FreshState()
	case !ok:
		return FreshState()
	}
	return state
}

// =============================================================================
// GATED OPERATIONS
// =============================================================================

// Append asks the gate to add an entry.
func (s *Session) Append(ctx context.Context, description string, delta int) (Result, error) {
	return s.Request(ctx, AppendAction(description, delta))
}

// Edit asks the gate to replace the entry at index.
func (s *Session) Edit(ctx context.Context, index int, description, date string, delta int) (Result, error) {
	return s.Request(ctx, EditAction(index, description, date, delta))
}

// Delete asks the gate to remove the entry at index.
func (s *Session) Delete(ctx context.Context, index int) (Result, error) {
	return s.Request(ctx, DeleteAction(index))
}

// Request validates an action and hands it to the gate.
func (s *Session) Request(ctx context.Context, a Action) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	res, err := s.gate.RequireAuthorization(ctx, a)
	if err == nil && res.Outcome == OutcomeCredentialRequired {
		s.log.Debug("action pending admin code", zap.Stringer("action", a))
	}
	return res, err
}

// SubmitCredential forwards the admin code to the gate.
func (s *Session) SubmitCredential(ctx context.Context, code string) (Result, error) {
	res, err := s.gate.SubmitCredential(ctx, code)
	if errors.Is(err, ErrIncorrectCredential) {
		s.log.Warn("incorrect admin code")
	}
	return res, err
}

// Cancel drops the pending action.
func (s *Session) Cancel() {
	if a, ok := s.gate.Pending(); ok {
		s.log.Debug("pending action cancelled", zap.Stringer("action", a))
	}
	s.gate.Cancel()
}

// =============================================================================
// EXECUTOR - Runs authorized actions
// =============================================================================

// Execute applies an authorized action to the ledger and saves the period.
func (s *Session) Execute(ctx context.Context, a Action) (Result, error) {
	res := Result{Outcome: OutcomeExecuted, Action: a}

	switch a.Kind {
	case ActionAppend:
		res.EntryID = s.ledger.Append(a.Description, a.Delta)
	case ActionEdit:
		if err := s.ledger.Edit(a.Index, a.Description, a.Date, a.Delta); err != nil {
			return Result{}, err
		}
	case ActionDelete:
		if err := s.ledger.Delete(a.Index); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}

	if err := s.store.Save(ctx, s.period, s.ledger.Snapshot()); err != nil {
		s.log.Warn("failed to persist ledger, keeping in-memory state",
			zap.Stringer("action", a), zap.Error(err))
		res.PersistErr = err
	}

	s.log.Info("ledger updated",
		zap.Stringer("action", a),
		zap.Int("balance", s.ledger.Balance()))
	return res, nil
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Snapshot returns the current balance and entries.
func (s *Session) Snapshot() State {
	return s.ledger.Snapshot()
}

// Period returns the active period key.
func (s *Session) Period() PeriodKey {
	return s.period
}

// GateState returns the lock state of the gate.
func (s *Session) GateState() GateState {
	return s.gate.State()
}

// Pending returns the action waiting for the admin code, if any.
func (s *Session) Pending() (Action, bool) {
	return s.gate.Pending()
}

// Export renders the active period as CSV.
func (s *Session) Export() (Export, error) {
	return NewExport(s.period, s.ledger.Snapshot().Entries)
}
