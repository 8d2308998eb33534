package api

import (
	"testing"

	"go.uber.org/goleak"
)

// The rollover scheduler owns a goroutine; every test must leave none behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
