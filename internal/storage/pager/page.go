// Package pager implements the page-oriented storage core: an aligned
// page buffer, a direct-I/O paged file, a clock-replacement buffer pool,
// a slotted page format for variable-length records, a single-page
// open-addressed hash table, and a record manager that appends records
// through the pool.
//
// The on-disk file is a flat sequence of PageSize-aligned pages with no
// file-level header; PageID is the page's byte offset divided by
// PageSize. Every typed page begins with a 4-byte CRC-32/IEEE checksum of
// the remainder of the page followed by a 2-byte page-type tag; the
// slotted page is the one exception, carrying no framing of its own.
package pager

import "fmt"

// PageID is a 64-bit page identifier: byte_offset / PageSize. PageIDs are
// assigned by AppendPage and are never reused once assigned.
type PageID uint64

// RecordID is the ordinal of a record within a slotted page's slot
// directory. Stable for the life of the record.
type RecordID uint16

// PageType identifies the kind of data stored in a page, read from the
// 2-byte tag at offset 4 of any typed page.
type PageType uint16

const (
	PageTypeMasterRecord            PageType = 0x0000
	PageTypeDataPage                PageType = 0x1000
	PageTypeSinglePageHashTable     PageType = 0x2000
	PageTypeHashTableFixedWidthSlot PageType = 0x2001
)

// String returns a human-readable label for the page type.
func (pt PageType) String() string {
	switch pt {
	case PageTypeMasterRecord:
		return "MasterRecord"
	case PageTypeDataPage:
		return "DataPage"
	case PageTypeSinglePageHashTable:
		return "SinglePageHashTable"
	case PageTypeHashTableFixedWidthSlot:
		return "HashTableFixedWidthSlot"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(pt))
	}
}

// ParsePageType converts a raw tag into a PageType, failing on any value
// not in the known set. This is a checked conversion: the source's
// From<u16> performed an unchecked transmute, which this implementation
// deliberately replaces — an unknown tag is always an error, never
// silently accepted.
func ParsePageType(tag uint16) (PageType, error) {
	switch PageType(tag) {
	case PageTypeMasterRecord, PageTypeDataPage, PageTypeSinglePageHashTable, PageTypeHashTableFixedWidthSlot:
		return PageType(tag), nil
	default:
		return 0, fmt.Errorf("%w: unknown page type tag 0x%04x", ErrPageTypeMismatch, tag)
	}
}

// pageTypeOffset is the byte offset of the 2-byte page-type tag within any
// framed page (the CRC occupies [0:4)).
const pageTypeOffset = 4

// readPageType reads and checks the page-type tag of a framed page.
func readPageType(page []byte) (PageType, error) {
	if len(page) < pageTypeOffset+2 {
		return 0, fmt.Errorf("%w: page too small for type tag", ErrWrongSize)
	}
	tag := uint16(page[pageTypeOffset]) | uint16(page[pageTypeOffset+1])<<8
	return ParsePageType(tag)
}

func writePageType(page []byte, pt PageType) {
	page[pageTypeOffset] = byte(pt)
	page[pageTypeOffset+1] = byte(pt >> 8)
}

// NewFramedPage allocates a zeroed aligned page with its type tag set and
// CRC computed over the (currently all-zero) remainder.
func NewFramedPage(pt PageType) *AlignedBuffer {
	buf := NewAlignedBuffer()
	writePageType(buf.Bytes(), pt)
	SetPageCRC(buf.Bytes())
	return buf
}
