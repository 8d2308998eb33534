package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/points-engine/ledger"
	"github.com/warp/points-engine/ledger/store"
)

func TestMemory_MissingIsNotAnError(t *testing.T) {
	m := store.NewMemory()

	_, ok, err := m.Load(context.Background(), "March 2025")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_SaveOverwrites(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	first := ledger.State{Balance: 98, Entries: []ledger.Entry{{Description: "Late", Delta: -2, Date: "3/4/2025"}}}
	second := ledger.FreshState()

	require.NoError(t, m.Save(ctx, "March 2025", first))
	require.NoError(t, m.Save(ctx, "March 2025", second))

	got, ok, err := m.Load(ctx, "March 2025")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)
	assert.Equal(t, []string{"points-March 2025"}, m.Keys())
}

func TestMemory_Malformed(t *testing.T) {
	m := store.NewMemory()
	m.Put("March 2025", []byte("{"))

	_, ok, err := m.Load(context.Background(), "March 2025")

	assert.False(t, ok)
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)
}
