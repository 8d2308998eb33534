/*
gate.go - Admin confirmation gate for ledger mutations

PURPOSE:
  Every mutation needs the shared admin code once per session. The gate
  holds a mutation back until the code is entered, then runs it.

STATES:
  Locked ──SubmitCredential(correct)──▶ Unlocked

  There is no way back: once unlocked, the gate stays unlocked for the life
  of the process. A restart starts Locked again.

PENDING ACTION:
  At most one action waits at a time. Asking again while locked replaces
  it (last request wins). A wrong code keeps it. Cancel drops it.

  The pending action is a plain Action value, so it can be inspected and
  compared in tests. Running it is delegated to an Executor.

SEE ALSO:
  - action.go: Action variants
  - session.go: The Executor that applies actions and persists
*/
package ledger

import (
	"context"
	"crypto/subtle"
)

// =============================================================================
// GATE STATE
// =============================================================================

// GateState is the lock state of a Gate.
type GateState string

const (
	GateLocked   GateState = "locked"
	GateUnlocked GateState = "unlocked"
)

// Outcome tells the caller what happened to a request.
type Outcome string

const (
	// OutcomeExecuted means the action ran.
	OutcomeExecuted Outcome = "executed"
	// OutcomeCredentialRequired means the action is pending; prompt for the code.
	OutcomeCredentialRequired Outcome = "credential_required"
	// OutcomeUnlocked means the gate unlocked with nothing pending.
	OutcomeUnlocked Outcome = "unlocked"
)

// Result is returned by gated operations.
type Result struct {
	Outcome Outcome
	Action  Action

	// EntryID is set when an append ran.
	EntryID EntryID

	// PersistErr is set when the action ran but the state could not be
	// saved. The in-memory ledger still holds the change.
	PersistErr error
}

// Executor runs an authorized action.
type Executor interface {
	Execute(ctx context.Context, a Action) (Result, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, a Action) (Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, a Action) (Result, error) {
	return f(ctx, a)
}

// =============================================================================
// GATE
// =============================================================================

// Gate authorizes mutations with a single shared secret.
type Gate struct {
	secret  []byte
	exec    Executor
	state   GateState
	pending Action
	hasPend bool
}

// NewGate creates a locked gate.
func NewGate(secret string, exec Executor) *Gate {
	return &Gate{
		secret: []byte(secret),
		exec:   exec,
		state:  GateLocked,
	}
}

// RequireAuthorization runs the action if the gate is unlocked, otherwise
// stores it as the pending action and asks for the code.
func (g *Gate) RequireAuthorization(ctx context.Context, a Action) (Result, error) {
	if g.state == GateUnlocked {
		return g.exec.Execute(ctx, a)
	}

	g.pending = a
	g.hasPend = true
	return Result{Outcome: OutcomeCredentialRequired, Action: a}, nil
}

// SubmitCredential unlocks the gate when value matches the secret and runs
// the pending action exactly once.
func (g *Gate) SubmitCredential(ctx context.Context, value string) (Result, error) {
	if subtle.ConstantTimeCompare([]byte(value), g.secret) != 1 {
		return Result{}, ErrIncorrectCredential
	}

	g.state = GateUnlocked
	if !g.hasPend {
		return Result{Outcome: OutcomeUnlocked}, nil
	}

	a := g.pending
	g.pending = Action{}
	g.hasPend = false
	return g.exec.Execute(ctx, a)
}

// Cancel drops the pending action. The lock state is unchanged.
func (g *Gate) Cancel() {
	g.pending = Action{}
	g.hasPend = false
}

// Pending returns the action waiting for the code, if any.
func (g *Gate) Pending() (Action, bool) {
	return g.pending, g.hasPend
}

// State returns the lock state.
func (g *Gate) State() GateState {
	return g.state
}
