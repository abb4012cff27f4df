package diskcache

import (
	"testing"
	"time"
)

// waitUntil polls cond until it is true or a short deadline elapses,
// avoiding sleeps tied to exact asynchronous trim/bootstrap timing.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met before deadline")
	}
}
