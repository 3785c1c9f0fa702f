package control

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestSignalActivitySetsHot verifies a send marks the system hot.
func TestSignalActivitySetsHot(t *testing.T) {
	Reset()
	defer Reset()

	_, hotFlag := Flags()
	if atomic.LoadUint32(hotFlag) != 0 {
		t.Fatal("hot flag set before any activity")
	}
	SignalActivity()
	if atomic.LoadUint32(hotFlag) != 1 {
		t.Fatal("hot flag not set after SignalActivity")
	}
}

// TestPollCooldownClearsAfterIdle shrinks the cooldown window and verifies
// the hot flag auto-clears once the window elapses without activity.
func TestPollCooldownClearsAfterIdle(t *testing.T) {
	Reset()
	SetCooldown(time.Millisecond)
	defer func() {
		SetCooldown(time.Second)
		Reset()
	}()

	SignalActivity()
	_, hotFlag := Flags()

	// Within the window the flag must survive polling.
	PollCooldown()
	if atomic.LoadUint32(hotFlag) != 1 {
		t.Fatal("hot flag cleared inside cooldown window")
	}

	time.Sleep(5 * time.Millisecond)
	PollCooldown()
	if atomic.LoadUint32(hotFlag) != 0 {
		t.Fatal("hot flag survived past cooldown window")
	}
}

// TestSetCooldownIgnoresNonPositive pins the guard against zero/negative
// durations arriving from a malformed config reload.
func TestSetCooldownIgnoresNonPositive(t *testing.T) {
	Reset()
	SetCooldown(time.Hour)
	SetCooldown(0)
	SetCooldown(-time.Second)
	defer func() {
		SetCooldown(time.Second)
		Reset()
	}()

	SignalActivity()
	time.Sleep(2 * time.Millisecond)
	PollCooldown()
	_, hotFlag := Flags()
	if atomic.LoadUint32(hotFlag) != 1 {
		t.Fatal("non-positive cooldown was applied")
	}
}

// TestShutdownRaisesStop verifies the stop flag reaches worker-visible state.
func TestShutdownRaisesStop(t *testing.T) {
	Reset()
	defer Reset()

	stopFlag, _ := Flags()
	Shutdown()
	if atomic.LoadUint32(stopFlag) != 1 {
		t.Fatal("stop flag not raised")
	}
}
