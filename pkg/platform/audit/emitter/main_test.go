package emitter

import (
	"testing"

	"go.uber.org/goleak"
)

// Emit must not leave goroutines or timers behind once it returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
