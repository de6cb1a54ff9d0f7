package pager

import "fmt"

// ───────────────────────────────────────────────────────────────────────────
// Record manager
// ───────────────────────────────────────────────────────────────────────────
//
// RecordManager tracks one "current append page" and appends records to
// it through the buffer pool, allocating a fresh page once the current
// one runs out of room. It does not reuse pages from its free-space
// index — that index is an external input the core never populates
// itself (§4.7, §9(a)).

// RecordManager appends records into slotted pages via a BufferPool.
type RecordManager struct {
	pool        *BufferPool
	currentID   PageID
	currentPage *SlottedPage
	currentBuf  *AlignedBuffer

	// freeSpace maps PageID -> approximate bytes available, seeded
	// externally via SeedFreeSpace. The core never writes to it other
	// than through that call; it exists so a caller layered on top (e.g.
	// a future catalog) has somewhere to record free-space hints.
	freeSpace map[PageID]int
}

// NewRecordManager allocates a fresh empty slotted page through pool and
// returns a RecordManager whose current append page is that new page.
func NewRecordManager(pool *BufferPool) (*RecordManager, error) {
	rm := &RecordManager{pool: pool, freeSpace: make(map[PageID]int)}
	if err := rm.rotatePage(); err != nil {
		return nil, err
	}
	return rm, nil
}

// SeedFreeSpace records an externally-known free-space hint for pageID.
// The record manager itself never populates this map; see §9(a).
func (rm *RecordManager) SeedFreeSpace(pageID PageID, bytes int) {
	rm.freeSpace[pageID] = bytes
}

// CurrentPageID returns the PageID records are currently being appended
// into.
func (rm *RecordManager) CurrentPageID() PageID { return rm.currentID }

// AppendRecord inserts data into the current append page if there is
// room, pushing the updated page back through the pool; otherwise it
// allocates a new page, inserts there, and makes that the new current
// page. Returns the PageID and RecordID the record was stored at.
func (rm *RecordManager) AppendRecord(data []byte) (PageID, RecordID, error) {
	if id, err := rm.currentPage.InsertRecord(data); err == nil {
		if err := rm.pool.UpdatePage(rm.currentID, rm.currentBuf); err != nil {
			return 0, 0, fmt.Errorf("append record: update page %d: %w", rm.currentID, err)
		}
		return rm.currentID, id, nil
	}

	if err := rm.rotatePage(); err != nil {
		return 0, 0, err
	}
	id, err := rm.currentPage.InsertRecord(data)
	if err != nil {
		return 0, 0, fmt.Errorf("append record: record does not fit even on a fresh page: %w", err)
	}
	if err := rm.pool.UpdatePage(rm.currentID, rm.currentBuf); err != nil {
		return 0, 0, fmt.Errorf("append record: update new page %d: %w", rm.currentID, err)
	}
	return rm.currentID, id, nil
}

// rotatePage allocates a new empty slotted page and makes it current.
func (rm *RecordManager) rotatePage() error {
	buf := NewAlignedBuffer()
	sp := NewSlottedPage(buf.Bytes())
	pageID, err := rm.pool.AppendPage(buf)
	if err != nil {
		return fmt.Errorf("rotate append page: %w", err)
	}
	rm.currentID = pageID
	rm.currentPage = sp
	rm.currentBuf = buf
	return nil
}
