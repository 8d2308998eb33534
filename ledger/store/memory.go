// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/points-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps encoded records in a map, one per period key.
// Records go through the same JSON codec as durable stores.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

// Load decodes the record saved under the period.
func (m *Memory) Load(_ context.Context, key ledger.PeriodKey) (ledger.State, bool, error) {
	m.mu.RLock()
	raw, ok := m.records[key.StorageKey()]
	m.mu.RUnlock()

	if !ok {
		return ledger.State{}, false, nil
	}
	state, _, err := ledger.DecodeRecord(raw)
	if err != nil {
		return ledger.State{}, false, err
	}
	return state, true, nil
}

// Save overwrites the record for the period.
func (m *Memory) Save(_ context.Context, key ledger.PeriodKey, state ledger.State) error {
	raw, err := ledger.EncodeRecord(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key.StorageKey()] = raw
	return nil
}

// Raw returns the encoded record for the period.
func (m *Memory) Raw(key ledger.PeriodKey) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.records[key.StorageKey()]
	return raw, ok
}

// Put stores raw bytes under the period, bypassing the codec.
func (m *Memory) Put(key ledger.PeriodKey, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key.StorageKey()] = raw
}

// Keys returns the storage keys held.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	return keys
}

// Compile-time check that Memory implements ledger.Store
var _ ledger.Store = (*Memory)(nil)
