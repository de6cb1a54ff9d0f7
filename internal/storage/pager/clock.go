package pager

// ───────────────────────────────────────────────────────────────────────────
// Clock (second-chance) replacement manager
// ───────────────────────────────────────────────────────────────────────────
//
// ClockManager tracks which of N frames holds a resident key and which to
// evict next, using one reference bit per frame and a rotating hand. It
// carries no knowledge of frame contents or I/O — it is pure bookkeeping,
// used by BufferPool to decide where to install a page.

// clockSlot is the generic stand-in for the source's Option<T>: a value
// plus whether it is actually resident.
type clockSlot[T any] struct {
	value T
	ok    bool
}

// ClockManager implements the clock (second-chance) page-replacement
// policy over a fixed number of slots, generic over the resident key
// type (PageID in this module).
type ClockManager[T comparable] struct {
	idx     int
	clock   []bool
	entries []clockSlot[T]
}

// NewClockManager allocates a clock manager with the given number of
// slots, all initially empty.
func NewClockManager[T comparable](size int) *ClockManager[T] {
	return &ClockManager[T]{
		clock:   make([]bool, size),
		entries: make([]clockSlot[T], size),
	}
}

// Size returns the number of slots under management.
func (cm *ClockManager[T]) Size() int { return len(cm.clock) }

// Update sets the reference bit for the given slot, marking it as
// recently used so a single sweep pass will spare it.
func (cm *ClockManager[T]) Update(idx int) {
	cm.clock[idx] = true
}

// EntryAt returns the key currently resident at idx, if any.
func (cm *ClockManager[T]) EntryAt(idx int) (T, bool) {
	e := cm.entries[idx]
	return e.value, e.ok
}

// Sweep finds a slot for entry, evicting the incumbent if necessary, and
// returns the chosen slot index along with the key that was evicted (if
// any). It scans forward from the hand with wraparound, clearing
// reference bits as it goes; the first slot found with a clear bit is
// selected. If a full pass finds every bit set (all slots recently
// touched), the hand's current position is selected instead — bounding
// the scan at exactly one pass over the ring rather than two.
func (cm *ClockManager[T]) Sweep(entry T) (int, T, bool) {
	size := len(cm.clock)
	idx := cm.idx
	found := false
	for i := 0; i < size; i++ {
		candidate := (cm.idx + i) % size
		if cm.clock[candidate] {
			cm.clock[candidate] = false
			continue
		}
		idx = candidate
		found = true
		break
	}
	if !found {
		idx = cm.idx
	}

	cm.idx = idx
	cm.clock[idx] = true

	old := cm.entries[idx]
	cm.entries[idx] = clockSlot[T]{value: entry, ok: true}
	return idx, old.value, old.ok
}

// SweepAvoiding behaves like Sweep but never selects a slot for which
// blocked reports true (used by BufferPool to keep pinned frames out of
// eviction consideration). If every slot is blocked, ok is false and the
// manager is left unmodified.
func (cm *ClockManager[T]) SweepAvoiding(entry T, blocked func(idx int) bool) (idx int, evicted T, hadEvicted bool, ok bool) {
	size := len(cm.clock)
	start := cm.idx
	candidateIdx := -1
	for i := 0; i < size; i++ {
		candidate := (start + i) % size
		if blocked(candidate) {
			continue
		}
		if cm.clock[candidate] {
			cm.clock[candidate] = false
			if candidateIdx == -1 {
				candidateIdx = candidate
			}
			continue
		}
		candidateIdx = candidate
		idx = candidate
		cm.idx = idx
		cm.clock[idx] = true
		old := cm.entries[idx]
		cm.entries[idx] = clockSlot[T]{value: entry, ok: true}
		return idx, old.value, old.ok, true
	}
	if candidateIdx == -1 {
		// Every slot is blocked.
		var zero T
		return 0, zero, false, false
	}
	idx = candidateIdx
	cm.idx = idx
	cm.clock[idx] = true
	old := cm.entries[idx]
	cm.entries[idx] = clockSlot[T]{value: entry, ok: true}
	return idx, old.value, old.ok, true
}
