package pager

import (
	"encoding/binary"
	"fmt"
)

// ───────────────────────────────────────────────────────────────────────────
// Slotted page
// ───────────────────────────────────────────────────────────────────────────
//
// A slotted page stores variable-length records on a single page, with
// no CRC/type framing of its own (§6: "the slotted page does NOT carry
// CRC/type framing in the source layout"). Layout, little-endian:
//
//   [0:2]   end_of_free_space (uint16) — offset where the last record
//           written begins; PageSize at construction.
//   [2:4]   record_count (uint16)
//   [4:4+4*record_count]  slot directory, one (offset:u16, size:u16)
//           pair per record, growing up from offset 4.
//   ... free space ...
//   [end_of_free_space:PageSize]  record payloads, growing down from
//           PageSize.
//
// Records are appended only; there is no delete or update operation in
// this core (§4.5, §9 — deletion is explicitly out of scope). The
// (0xFFFF, 0) tombstone layout the source reserves is therefore never
// written by this package.

const slotHeaderSize = 4 // end_of_free_space + record_count
const slotEntrySize = 4  // offset + size, each uint16

// SlottedPage is a typed view over an aligned page buffer.
type SlottedPage struct {
	buf []byte
}

// WrapSlottedPage wraps an existing page buffer (e.g. one just read back
// from the buffer pool) without altering its contents.
func WrapSlottedPage(buf []byte) *SlottedPage {
	if len(buf) != PageSize {
		panic(fmt.Sprintf("slotted page buffer must be %d bytes, got %d", PageSize, len(buf)))
	}
	return &SlottedPage{buf: buf}
}

// NewSlottedPage initialises buf as an empty slotted page: no records,
// end_of_free_space at PageSize.
func NewSlottedPage(buf []byte) *SlottedPage {
	sp := WrapSlottedPage(buf)
	sp.setEndOfFreeSpace(PageSize)
	sp.setRecordCount(0)
	return sp
}

func (sp *SlottedPage) endOfFreeSpace() int {
	return int(binary.LittleEndian.Uint16(sp.buf[0:2]))
}

func (sp *SlottedPage) setEndOfFreeSpace(v int) {
	binary.LittleEndian.PutUint16(sp.buf[0:2], uint16(v))
}

// RecordCount returns the number of slots in the directory.
func (sp *SlottedPage) RecordCount() int {
	return int(binary.LittleEndian.Uint16(sp.buf[2:4]))
}

func (sp *SlottedPage) setRecordCount(n int) {
	binary.LittleEndian.PutUint16(sp.buf[2:4], uint16(n))
}

func (sp *SlottedPage) headerSize() int {
	return slotHeaderSize + slotEntrySize*sp.RecordCount()
}

// FreeSpace returns the number of bytes available for new record payload
// and directory growth combined (the source's available_bytes()).
func (sp *SlottedPage) FreeSpace() int {
	return sp.endOfFreeSpace() - sp.headerSize()
}

func (sp *SlottedPage) slotOffset(id RecordID) int {
	return slotHeaderSize + int(id)*slotEntrySize
}

func (sp *SlottedPage) recordHeader(id RecordID) (offset, size uint16) {
	off := sp.slotOffset(id)
	return binary.LittleEndian.Uint16(sp.buf[off : off+2]), binary.LittleEndian.Uint16(sp.buf[off+2 : off+4])
}

func (sp *SlottedPage) writeRecordHeader(id RecordID, offset, size uint16) {
	off := sp.slotOffset(id)
	binary.LittleEndian.PutUint16(sp.buf[off:off+2], offset)
	binary.LittleEndian.PutUint16(sp.buf[off+2:off+4], size)
}

// InsertRecord appends data as a new record, returning its RecordID.
// Fails with ErrPageFull if there is not enough room for the record
// payload plus its 4-byte directory entry.
func (sp *SlottedPage) InsertRecord(data []byte) (RecordID, error) {
	reclen := len(data)
	if reclen+slotEntrySize > sp.FreeSpace() {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrPageFull, reclen+slotEntrySize, sp.FreeSpace())
	}

	newEnd := sp.endOfFreeSpace() - reclen
	copy(sp.buf[newEnd:newEnd+reclen], data)
	sp.setEndOfFreeSpace(newEnd)

	id := RecordID(sp.RecordCount())
	sp.writeRecordHeader(id, uint16(newEnd), uint16(reclen))
	sp.setRecordCount(int(id) + 1)
	return id, nil
}

// GetRecord returns the byte range of the record at id, or ErrNotFound if
// id is beyond the current record count.
func (sp *SlottedPage) GetRecord(id RecordID) ([]byte, error) {
	if int(id) >= sp.RecordCount() {
		return nil, fmt.Errorf("%w: record %d", ErrNotFound, id)
	}
	offset, size := sp.recordHeader(id)
	return sp.buf[offset : offset+size], nil
}

// Data returns the underlying page buffer, for persistence via the
// buffer pool.
func (sp *SlottedPage) Data() []byte { return sp.buf }
