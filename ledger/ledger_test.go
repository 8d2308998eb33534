package ledger_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/points-engine/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	}
}

func newTestLedger(t *testing.T, deltas ...int) *ledger.Ledger {
	t.Helper()
	l := ledger.NewLedger(ledger.WithClock(fixedClock(2025, time.March, 4)))
	for i, d := range deltas {
		l.Append("entry", d)
		require.Equal(t, i+1, l.Len())
	}
	return l
}

func requireInvariant(t *testing.T, l *ledger.Ledger) {
	t.Helper()
	snap := l.Snapshot()
	require.Equal(t, snap.ExpectedBalance(), snap.Balance, "balance must equal base + sum(deltas)")
	require.NoError(t, l.Verify())
}

// =============================================================================
// APPEND
// =============================================================================

func TestLedger_New_StartsAtBasePoints(t *testing.T) {
	l := ledger.NewLedger()

	snap := l.Snapshot()
	assert.Equal(t, ledger.BasePoints, snap.Balance)
	assert.Empty(t, snap.Entries)
	assert.NotNil(t, snap.Entries)
}

func TestLedger_Append_AdjustsBalanceAndDatesEntry(t *testing.T) {
	// GIVEN: An empty ledger on March 4, 2025
	l := newTestLedger(t)

	// WHEN: Recording a late arrival and a bonus
	id1 := l.Append("Late", -2)
	id2 := l.Append("Positive feedback", 5)

	// THEN: Balance is 100 - 2 + 5 and entries are in insertion order
	assert.Equal(t, ledger.EntryID(0), id1)
	assert.Equal(t, ledger.EntryID(1), id2)
	assert.Equal(t, 103, l.Balance())

	snap := l.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, ledger.Entry{Description: "Late", Delta: -2, Date: "3/4/2025"}, snap.Entries[0])
	assert.Equal(t, "Positive feedback", snap.Entries[1].Description)
	assert.False(t, snap.Entries[0].IsPositive())
	assert.True(t, snap.Entries[1].IsPositive())
	requireInvariant(t, l)
}

func TestLedger_Append_ZeroDelta(t *testing.T) {
	l := newTestLedger(t)

	l.Append("Math grade: 60", 0)

	assert.Equal(t, ledger.BasePoints, l.Balance())
	entry, err := l.Entry(0)
	require.NoError(t, err)
	assert.False(t, entry.IsPositive(), "zero is not positive")
}

// =============================================================================
// EDIT
// =============================================================================

func TestLedger_Edit_AppliesDeltaDifference(t *testing.T) {
	// GIVEN: [-2, +5] => 103
	l := newTestLedger(t, -2, 5)

	// WHEN: The -2 is corrected to -5 with a new date
	err := l.Edit(0, "Negative teacher call", "3/1/2025", -5)

	// THEN: Balance moves by exactly -3
	require.NoError(t, err)
	assert.Equal(t, 100, l.Balance())
	entry, _ := l.Entry(0)
	assert.Equal(t, "Negative teacher call", entry.Description)
	assert.Equal(t, "3/1/2025", entry.Date)
	requireInvariant(t, l)
}

func TestLedger_Edit_RecomputesIsPositive(t *testing.T) {
	l := newTestLedger(t, -3)

	require.NoError(t, l.Edit(0, "entry", "3/4/2025", 4))

	entry, _ := l.Entry(0)
	assert.True(t, entry.IsPositive())

	require.NoError(t, l.Edit(0, "entry", "3/4/2025", -1))
	entry, _ = l.Entry(0)
	assert.False(t, entry.IsPositive())
}

func TestLedger_Edit_NoOpLeavesStateUnchanged(t *testing.T) {
	// GIVEN: A ledger with three entries
	l := newTestLedger(t, -2, 5, -3)
	before := l.Snapshot()

	// WHEN: Editing an entry to its current values
	e := before.Entries[1]
	require.NoError(t, l.Edit(1, e.Description, e.Date, e.Delta))

	// THEN: Nothing changes
	assert.Equal(t, before, l.Snapshot())
}

func TestLedger_Edit_OutOfRange(t *testing.T) {
	l := newTestLedger(t, -2, 5)
	before := l.Snapshot()

	for _, index := range []int{-1, 2, 100} {
		err := l.Edit(index, "x", "1/1/2025", 50)

		require.Error(t, err)
		assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
		var idxErr *ledger.IndexError
		require.ErrorAs(t, err, &idxErr)
		assert.Equal(t, index, idxErr.Index)
		assert.Equal(t, 2, idxErr.Len)
	}
	assert.Equal(t, before, l.Snapshot(), "failed edit must not change state")
}

// =============================================================================
// DELETE
// =============================================================================

func TestLedger_Delete_RemovesExactlyOneAndKeepsOrder(t *testing.T) {
	// GIVEN: [-2, +5, -3, +5] => 105
	l := ledger.NewLedger()
	l.Append("a", -2)
	l.Append("b", 5)
	l.Append("c", -3)
	l.Append("d", 5)

	// WHEN: Deleting index 1 (+5)
	require.NoError(t, l.Delete(1))

	// THEN: Balance drops by 5, remaining order is a, c, d
	assert.Equal(t, 100, l.Balance())
	snap := l.Snapshot()
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, []string{"a", "c", "d"}, descriptions(snap.Entries))
	requireInvariant(t, l)
}

func TestLedger_Delete_LastAndOnly(t *testing.T) {
	l := newTestLedger(t, 7)

	require.NoError(t, l.Delete(0))

	assert.Equal(t, ledger.BasePoints, l.Balance())
	assert.Zero(t, l.Len())
}

func TestLedger_Delete_OutOfRange(t *testing.T) {
	l := newTestLedger(t, -2)
	before := l.Snapshot()

	err := l.Delete(1)

	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
	assert.Equal(t, before, l.Snapshot())
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestLedger_Snapshot_IsIsolated(t *testing.T) {
	l := newTestLedger(t, -2, 5)
	snap := l.Snapshot()

	// Mutating the snapshot does not reach the ledger
	snap.Entries[0].Delta = 1000
	entry, _ := l.Entry(0)
	assert.Equal(t, -2, entry.Delta)

	// Mutating the ledger does not reach the snapshot
	require.NoError(t, l.Delete(1))
	l.Append("later", 1)
	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, 5, snap.Entries[1].Delta)
	assert.Equal(t, 103, snap.Balance)

	fresh := l.Snapshot()
	assert.Equal(t, 99, fresh.Balance)
	assert.Equal(t, []string{"entry", "later"}, descriptions(fresh.Entries))
}

func TestLedger_WithState_CopiesInput(t *testing.T) {
	state := ledger.State{Balance: 98, Entries: []ledger.Entry{{Description: "Late", Delta: -2, Date: "3/4/2025"}}}

	l := ledger.NewLedger(ledger.WithState(state))
	state.Entries[0].Delta = 50

	entry, err := l.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, -2, entry.Delta)
	assert.Equal(t, 98, l.Balance())
}

func TestLedger_Verify_DetectsDrift(t *testing.T) {
	l := ledger.NewLedger(ledger.WithState(ledger.State{
		Balance: 120,
		Entries: []ledger.Entry{{Description: "x", Delta: 5}},
	}))

	err := l.Verify()

	assert.ErrorIs(t, err, ledger.ErrBalanceDrift)
	var drift *ledger.DriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, 105, drift.Expected)
}

// =============================================================================
// INVARIANT UNDER RANDOM SEQUENCES
// =============================================================================

func TestLedger_BalanceInvariant_RandomSequences(t *testing.T) {
	// Any sequence of append/edit/delete keeps balance == 100 + sum(deltas).
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		l := ledger.NewLedger()
		for step := 0; step < 200; step++ {
			delta := rng.Intn(21) - 10
			switch op := rng.Intn(3); {
			case op == 0 || l.Len() == 0:
				l.Append("entry", delta)
			case op == 1:
				require.NoError(t, l.Edit(rng.Intn(l.Len()), "edited", "1/1/2025", delta))
			default:
				before := l.Balance()
				index := rng.Intn(l.Len())
				removed, _ := l.Entry(index)
				n := l.Len()
				require.NoError(t, l.Delete(index))
				require.Equal(t, before-removed.Delta, l.Balance())
				require.Equal(t, n-1, l.Len())
			}
			requireInvariant(t, l)
		}
	}
}

func descriptions(entries []ledger.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Description
	}
	return out
}
