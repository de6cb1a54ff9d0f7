package pager

import "testing"

// TestClockManager_BasicSweepAndUpdate reproduces the numeric fixture
// from the concrete scenario "Clock basic" (scenario 1): a clock of size
// 4, filled with four distinct keys, evicted in FIFO order until some
// slots are refreshed with Update, at which point eviction order skips
// them.
func TestClockManager_BasicSweepAndUpdate(t *testing.T) {
	cm := NewClockManager[int](4)

	for i, val := range []int{100, 101, 102, 103} {
		idx, _, evicted := cm.Sweep(val)
		if idx != i {
			t.Fatalf("sweep(%d): got idx %d, want %d", val, idx, i)
		}
		if evicted {
			t.Fatalf("sweep(%d): unexpected eviction", val)
		}
	}

	idx, victim, evicted := cm.Sweep(104)
	if idx != 0 || !evicted || victim != 100 {
		t.Fatalf("sweep(104) = (%d, %d, %v), want (0, 100, true)", idx, victim, evicted)
	}

	cm.Update(1)
	cm.Update(2)

	idx, victim, evicted = cm.Sweep(105)
	if idx != 3 || !evicted || victim != 103 {
		t.Fatalf("sweep(105) = (%d, %d, %v), want (3, 103, true)", idx, victim, evicted)
	}

	want := []int{104, 101, 102, 105}
	for i, w := range want {
		got, ok := cm.EntryAt(i)
		if !ok || got != w {
			t.Fatalf("entries[%d] = (%d, %v), want (%d, true)", i, got, ok, w)
		}
	}
}

// TestClockManager_TerminatesWithinOneSweep checks the termination bound:
// a full sweep with every bit set selects the hand position rather than
// looping past the ring.
func TestClockManager_TerminatesWithinOneSweep(t *testing.T) {
	cm := NewClockManager[int](3)
	cm.Sweep(1)
	cm.Sweep(2)
	cm.Sweep(3)
	cm.Update(0)
	cm.Update(1)
	cm.Update(2)

	idx, _, evicted := cm.Sweep(4)
	if !evicted {
		t.Fatalf("expected an eviction when every slot is occupied")
	}
	if idx < 0 || idx >= cm.Size() {
		t.Fatalf("sweep returned out-of-range index %d", idx)
	}
}
