package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/warp/points-engine/ledger"
	"github.com/warp/points-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var march4 = fixedClock(2025, time.March, 4)

const march = ledger.PeriodKey("March 2025")

func newTestSession(t *testing.T, st ledger.Store) *ledger.Session {
	t.Helper()
	s, err := ledger.OpenSession(context.Background(), ledger.SessionConfig{
		Store:  st,
		Secret: testSecret,
		Clock:  march4,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return s
}

func unlockedSession(t *testing.T, st ledger.Store) *ledger.Session {
	t.Helper()
	s := newTestSession(t, st)
	_, err := s.SubmitCredential(context.Background(), testSecret)
	require.NoError(t, err)
	return s
}

// failingStore loads nothing and refuses every save.
type failingStore struct {
	loadErr error
	saves   int
}

func (f *failingStore) Load(context.Context, ledger.PeriodKey) (ledger.State, bool, error) {
	return ledger.State{}, false, f.loadErr
}

func (f *failingStore) Save(context.Context, ledger.PeriodKey, ledger.State) error {
	f.saves++
	return errors.New("quota exceeded")
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpenSession_FreshPeriod(t *testing.T) {
	s := newTestSession(t, store.NewMemory())

	assert.Equal(t, march, s.Period())
	assert.Equal(t, ledger.FreshState(), s.Snapshot())
	assert.Equal(t, ledger.GateLocked, s.GateState())
}

func TestOpenSession_RequiresStore(t *testing.T) {
	_, err := ledger.OpenSession(context.Background(), ledger.SessionConfig{Secret: testSecret})
	assert.Error(t, err)
}

func TestOpenSession_LoadsSavedPeriod(t *testing.T) {
	// GIVEN: March already has a record
	mem := store.NewMemory()
	saved := ledger.State{Balance: 98, Entries: []ledger.Entry{{Description: "Late", Delta: -2, Date: "3/1/2025"}}}
	require.NoError(t, mem.Save(context.Background(), march, saved))

	// WHEN: A session opens in March
	s := newTestSession(t, mem)

	// THEN: The saved state is restored
	assert.Equal(t, saved, s.Snapshot())
}

func TestOpenSession_OtherPeriodStartsFresh(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Save(context.Background(), "February 2025", ledger.State{
		Balance: 95, Entries: []ledger.Entry{{Description: "Negative teacher call", Delta: -5}},
	}))

	s := newTestSession(t, mem)

	assert.Equal(t, ledger.FreshState(), s.Snapshot(), "no cross-period carryover")
}

func TestOpenSession_MalformedRecordFallsBackToFresh(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(march, []byte(`{"points": 1`))

	s := newTestSession(t, mem)

	assert.Equal(t, ledger.FreshState(), s.Snapshot())
}

func TestOpenSession_LoadFailureFallsBackToFresh(t *testing.T) {
	s := newTestSession(t, &failingStore{loadErr: errors.New("disk unavailable")})

	assert.Equal(t, ledger.FreshState(), s.Snapshot())
}

func TestOpenSession_ExplicitPeriod(t *testing.T) {
	s, err := ledger.OpenSession(context.Background(), ledger.SessionConfig{
		Store:  store.NewMemory(),
		Secret: testSecret,
		Clock:  march4,
		Period: "January 2024",
	})
	require.NoError(t, err)

	assert.Equal(t, ledger.PeriodKey("January 2024"), s.Period())
}

// =============================================================================
// GATED MUTATIONS
// =============================================================================

func TestSession_AppendWaitsForCredential(t *testing.T) {
	// GIVEN: A locked session
	mem := store.NewMemory()
	s := newTestSession(t, mem)
	ctx := context.Background()

	// WHEN: An append is requested
	res, err := s.Append(ctx, "Late", -2)

	// THEN: Nothing changes until the code is entered
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeCredentialRequired, res.Outcome)
	assert.Equal(t, ledger.BasePoints, s.Snapshot().Balance)
	_, saved := mem.Raw(march)
	assert.False(t, saved)

	// WHEN: The code is entered
	res, err = s.SubmitCredential(ctx, testSecret)

	// THEN: The append runs and is persisted
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeExecuted, res.Outcome)
	assert.Equal(t, ledger.EntryID(0), res.EntryID)
	assert.NoError(t, res.PersistErr)
	assert.Equal(t, 98, s.Snapshot().Balance)
	assert.Equal(t, "3/4/2025", s.Snapshot().Entries[0].Date)

	loaded, ok, err := mem.Load(ctx, march)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s.Snapshot(), loaded)
}

func TestSession_WrongCredentialKeepsPending(t *testing.T) {
	s := newTestSession(t, store.NewMemory())
	ctx := context.Background()
	_, err := s.Append(ctx, "Absence", -3)
	require.NoError(t, err)

	_, err = s.SubmitCredential(ctx, "1234")

	assert.ErrorIs(t, err, ledger.ErrIncorrectCredential)
	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, ledger.AppendAction("Absence", -3), pending)
	assert.Equal(t, ledger.BasePoints, s.Snapshot().Balance)
}

func TestSession_CancelDropsPending(t *testing.T) {
	s := newTestSession(t, store.NewMemory())
	ctx := context.Background()
	_, _ = s.Append(ctx, "Absence", -3)

	s.Cancel()

	_, ok := s.Pending()
	assert.False(t, ok)
	res, err := s.SubmitCredential(ctx, testSecret)
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeUnlocked, res.Outcome)
	assert.Equal(t, ledger.BasePoints, s.Snapshot().Balance)
}

func TestSession_EditAndDeletePersist(t *testing.T) {
	mem := store.NewMemory()
	s := unlockedSession(t, mem)
	ctx := context.Background()

	_, err := s.Append(ctx, "Late", -2)
	require.NoError(t, err)
	_, err = s.Append(ctx, "Positive feedback", 5)
	require.NoError(t, err)

	_, err = s.Edit(ctx, 0, "Absence", "3/2/2025", -3)
	require.NoError(t, err)
	assert.Equal(t, 102, s.Snapshot().Balance)

	_, err = s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 97, s.Snapshot().Balance)

	// A reload in the same period reconstructs identical state
	reloaded := newTestSession(t, mem)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, ledger.GateLocked, reloaded.GateState(), "unlock is not persisted")
}

func TestSession_IndexOutOfRangeChangesNothing(t *testing.T) {
	mem := store.NewMemory()
	s := unlockedSession(t, mem)
	ctx := context.Background()
	_, err := s.Append(ctx, "Late", -2)
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Edit(ctx, 5, "x", "x", 40)
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
	_, err = s.Delete(ctx, -1)
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)

	assert.Equal(t, before, s.Snapshot())
}

func TestSession_PendingEditOutOfRangeFailsOnUnlock(t *testing.T) {
	s := newTestSession(t, store.NewMemory())
	ctx := context.Background()
	_, err := s.Delete(ctx, 0)
	require.NoError(t, err)

	_, err = s.SubmitCredential(ctx, testSecret)

	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)
	assert.Equal(t, ledger.GateUnlocked, s.GateState(), "the code was right")
	_, ok := s.Pending()
	assert.False(t, ok)
}

func TestSession_RejectsEmptyDescription(t *testing.T) {
	s := newTestSession(t, store.NewMemory())

	_, err := s.Append(context.Background(), "", 5)

	assert.ErrorIs(t, err, ledger.ErrEmptyDescription)
	_, ok := s.Pending()
	assert.False(t, ok)
}

func TestSession_PersistFailureIsAWarning(t *testing.T) {
	// GIVEN: Storage that rejects every save
	st := &failingStore{}
	s := unlockedSession(t, st)

	// WHEN: Adding an entry
	res, err := s.Append(context.Background(), "Positive feedback", 5)

	// THEN: The mutation stands and the failure is reported on the result
	require.NoError(t, err)
	assert.Equal(t, ledger.OutcomeExecuted, res.Outcome)
	assert.Error(t, res.PersistErr)
	assert.Equal(t, 105, s.Snapshot().Balance)
	assert.Equal(t, 1, st.saves)
}

func TestSession_Export(t *testing.T) {
	s := unlockedSession(t, store.NewMemory())
	ctx := context.Background()
	for _, d := range []int{-2, 5, -3} {
		_, err := s.Append(ctx, "entry", d)
		require.NoError(t, err)
	}

	exp, err := s.Export()

	require.NoError(t, err)
	assert.Equal(t, "points-March 2025.csv", exp.Filename)
	assert.Equal(t, "Date,Description,Points,Total\n"+
		"3/4/2025,entry,-2,98\n"+
		"3/4/2025,entry,5,103\n"+
		"3/4/2025,entry,-3,100\n", string(exp.Body))
}
