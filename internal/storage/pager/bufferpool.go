package pager

import (
	"fmt"
	"log"
	"sync"
)

// ───────────────────────────────────────────────────────────────────────────
// Buffer pool
// ───────────────────────────────────────────────────────────────────────────
//
// BufferPool owns a fixed number of page frames, a clock replacement
// manager, and the paged file beneath them. It is the central I/O layer:
// ReadPage/AppendPage/UpdatePage are the only operations that touch the
// paged file; every caller above this layer works in terms of PageIDs and
// aligned buffers.

// frame is one cache slot: an aligned buffer plus a pin count. A pinned
// frame is never chosen as an eviction victim (§5 of the expanded spec).
type frame struct {
	buf    *AlignedBuffer
	pinned int
}

// BufferPoolConfig configures a BufferPool.
type BufferPoolConfig struct {
	// Frames is the number of page frames the pool holds. Must be >= 1.
	Frames int
	// Logger receives diagnostic messages (one line per eviction; the pool
	// does not check page CRCs, so it logs no CRC failures). A nil
	// Logger falls back to log.Default(), matching tinySQL's own ambient
	// use of the stdlib logger.
	Logger *log.Logger
}

// BufferPool caches pages from a PagedFile using clock replacement.
type BufferPool struct {
	mu sync.Mutex

	pageTable map[PageID]int
	manager   *ClockManager[PageID]
	frames    []frame

	storage *PagedFile
	log     *log.Logger
}

// NewBufferPool wraps storage with a fixed-capacity clock-replacement
// cache.
func NewBufferPool(storage *PagedFile, cfg BufferPoolConfig) *BufferPool {
	if cfg.Frames <= 0 {
		cfg.Frames = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	frames := make([]frame, cfg.Frames)
	for i := range frames {
		frames[i].buf = NewAlignedBuffer()
	}
	return &BufferPool{
		pageTable: make(map[PageID]int, cfg.Frames),
		manager:   NewClockManager[PageID](cfg.Frames),
		frames:    frames,
		storage:   storage,
		log:       logger,
	}
}

// ReadPage fills out with the contents of page_id, using the cache on
// hit and falling through to the paged file on miss.
func (bp *BufferPool) ReadPage(pageID PageID, out *AlignedBuffer) error {
	bp.mu.Lock()
	if i, ok := bp.pageTable[pageID]; ok {
		bp.manager.Update(i)
		out.CopyFromSlice(bp.frames[i].buf.Bytes())
		bp.mu.Unlock()
		return nil
	}
	bp.mu.Unlock()

	if err := bp.storage.ReadPage(pageID, out); err != nil {
		return err
	}

	bp.mu.Lock()
	err := bp.installLocked(pageID, out.Bytes())
	bp.mu.Unlock()
	return err
}

// AppendPage writes data as a new page through the paged file and
// installs it into the cache, returning the newly assigned PageID.
func (bp *BufferPool) AppendPage(data *AlignedBuffer) (PageID, error) {
	pageID, err := bp.storage.AppendPage(data)
	if err != nil {
		return 0, err
	}
	bp.mu.Lock()
	err = bp.installLocked(pageID, data.Bytes())
	bp.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return pageID, nil
}

// UpdatePage installs data into the cache and writes it through to the
// paged file. There is no dirty-bit deferral: every update is synchronous
// (§4.4) — an implementer choosing writeback would need to add a dirty
// flag, flush-before-evict, and an explicit checkpoint, none of which is
// in scope here.
func (bp *BufferPool) UpdatePage(pageID PageID, data *AlignedBuffer) error {
	bp.mu.Lock()
	err := bp.installLocked(pageID, data.Bytes())
	bp.mu.Unlock()
	if err != nil {
		return err
	}
	return bp.storage.WritePage(pageID, data)
}

// PinPage increments the pin count of a resident page so the clock sweep
// will never choose it as an eviction victim. No-op if the page is not
// resident.
func (bp *BufferPool) PinPage(pageID PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if i, ok := bp.pageTable[pageID]; ok {
		bp.frames[i].pinned++
	}
}

// UnpinPage decrements the pin count of a resident page.
func (bp *BufferPool) UnpinPage(pageID PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if i, ok := bp.pageTable[pageID]; ok && bp.frames[i].pinned > 0 {
		bp.frames[i].pinned--
	}
}

// installLocked copies data into a frame for pageID, updating the clock
// and page table to keep the invariant
// pageTable[pid]=i ⇔ clock.entries[i]=Some(pid) true after it returns.
// Data is copied into the destination frame fully before the page-table
// entry for it is published — the "copy then publish" ordering the
// expanded spec (§9(b)) calls for — so a concurrent reader of the same
// frame index can never observe a page-table entry pointing at
// half-written bytes.
//
// Pinned frames are excluded from the victim search (§5): SweepAvoiding
// skips any index with a nonzero pin count. If every frame is pinned,
// installLocked fails rather than evicting a page still in use.
//
// bp.mu must be held by the caller.
func (bp *BufferPool) installLocked(pageID PageID, data []byte) error {
	if i, ok := bp.pageTable[pageID]; ok {
		// Already resident: refresh recency, don't search for a victim.
		bp.frames[i].buf.CopyFromSlice(data)
		bp.manager.Update(i)
		return nil
	}

	i, evicted, hadEvicted, ok := bp.manager.SweepAvoiding(pageID, func(idx int) bool {
		return bp.frames[idx].pinned > 0
	})
	if !ok {
		return fmt.Errorf("pager: no unpinned frame available to install page %d", pageID)
	}
	bp.frames[i].buf.CopyFromSlice(data)
	if hadEvicted {
		delete(bp.pageTable, evicted)
		bp.log.Printf("pager: evicted page %d from frame %d", evicted, i)
	}
	bp.pageTable[pageID] = i
	return nil
}

// PageSize returns the configured page size.
func (bp *BufferPool) PageSize() int { return bp.storage.PageSize() }

// Close closes the underlying paged file.
func (bp *BufferPool) Close() error { return bp.storage.Close() }

// Resident reports whether pageID currently has a cache frame, for tests
// and diagnostics.
func (bp *BufferPool) Resident(pageID PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	_, ok := bp.pageTable[pageID]
	return ok
}

// Stat returns a short human-readable summary of pool occupancy, used by
// the cmd/potpot "stat" diagnostic subcommand.
func (bp *BufferPool) Stat() string {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return fmt.Sprintf("frames=%d resident=%d", len(bp.frames), len(bp.pageTable))
}
