package pager

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ───────────────────────────────────────────────────────────────────────────
// Single-page hash table
// ───────────────────────────────────────────────────────────────────────────
//
// A single aligned page storing key:uint64 -> value:[ValueSize]byte,
// open-addressed with linear probing. Page layout, little-endian:
//
//   [0:4]    crc            (CRC-32/IEEE over [4:PageSize))
//   [4:6]    page_type      (0x2000 = SinglePageHashTable)
//   [6:8]    value_size
//   [8:10]   hash_algo      (0x0000 = XXH64)
//   [10:16]  padding
//   [16:24]  hash_seed
//   [24:]    slots: (key:uint64, value:[value_size]byte) pairs
//
// Capacity = (PageSize - 0x18) / (8 + value_size).
//
// Slot-state representation (§4.6 of the expanded spec, a decision the
// source left to the implementer): the key 0xFFFFFFFFFFFFFFFF means
// "empty". Any other key value means "occupied". There is no separate
// tombstone state because this core never deletes entries.

const (
	htValueSizeOff = 6
	htHashAlgoOff  = 8
	htHashSeedOff  = 16
	htSlotsOff     = 0x18
	htKeySize      = 8

	// emptyKey is the sentinel marking an unoccupied slot.
	emptyKey uint64 = 0xFFFFFFFFFFFFFFFF
)

// HashAlgo identifies the hash function used to place keys in a
// SinglePageHashTable.
type HashAlgo uint16

const HashAlgoXXH64 HashAlgo = 0x0000

// ParseHashAlgo is the checked conversion for the hash_algo field,
// mirroring ParsePageType's rejection of unknown tags.
func ParseHashAlgo(tag uint16) (HashAlgo, error) {
	switch HashAlgo(tag) {
	case HashAlgoXXH64:
		return HashAlgo(tag), nil
	default:
		return 0, fmt.Errorf("%w: unknown hash algorithm 0x%04x", ErrPageTypeMismatch, tag)
	}
}

// SinglePageHashTable is a typed view over an aligned page buffer holding
// a fixed-width-value, open-addressed hash table.
type SinglePageHashTable struct {
	pageID    PageID
	buf       []byte
	valueSize int
	seed      uint64
}

// NewSinglePageHashTable creates a new empty hash table page with the
// given value size and seed, and appends it through pool, recording the
// assigned PageID.
func NewSinglePageHashTable(pool *BufferPool, valueSize int, seed uint64) (*SinglePageHashTable, error) {
	if valueSize < 0 || htSlotsOff+valueSize+htKeySize > PageSize {
		return nil, fmt.Errorf("hash table: value size %d does not fit in one page", valueSize)
	}
	page := NewFramedPage(PageTypeSinglePageHashTable)
	buf := page.Bytes()
	binary.LittleEndian.PutUint16(buf[htValueSizeOff:], uint16(valueSize))
	binary.LittleEndian.PutUint16(buf[htHashAlgoOff:], uint16(HashAlgoXXH64))
	binary.LittleEndian.PutUint64(buf[htHashSeedOff:], seed)

	ht := &SinglePageHashTable{buf: buf, valueSize: valueSize, seed: seed}
	ht.initSlots()
	SetPageCRC(buf)

	pageID, err := pool.AppendPage(page)
	if err != nil {
		return nil, err
	}
	ht.pageID = pageID
	return ht, nil
}

// FromPage loads an existing hash table page from the pool, validating
// CRC, size, and page type.
func FromPage(pool *BufferPool, pageID PageID) (*SinglePageHashTable, error) {
	buf := NewAlignedBuffer()
	if err := pool.ReadPage(pageID, buf); err != nil {
		return nil, err
	}
	raw := buf.Bytes()
	if len(raw) != PageSize {
		return nil, fmt.Errorf("%w: hash table page", ErrWrongSize)
	}
	if !VerifyPageCRC(raw) {
		return nil, fmt.Errorf("%w: hash table page %d", ErrCRCMismatch, pageID)
	}
	pt, err := readPageType(raw)
	if err != nil {
		return nil, err
	}
	if pt != PageTypeSinglePageHashTable {
		return nil, fmt.Errorf("%w: expected SinglePageHashTable, got %s", ErrPageTypeMismatch, pt)
	}
	if _, err := ParseHashAlgo(binary.LittleEndian.Uint16(raw[htHashAlgoOff:])); err != nil {
		return nil, err
	}
	valueSize := int(binary.LittleEndian.Uint16(raw[htValueSizeOff:]))
	seed := binary.LittleEndian.Uint64(raw[htHashSeedOff:])
	return &SinglePageHashTable{pageID: pageID, buf: raw, valueSize: valueSize, seed: seed}, nil
}

// PageID returns the backing page's id.
func (ht *SinglePageHashTable) PageID() PageID { return ht.pageID }

// Capacity returns the number of key/value slots the page holds.
func (ht *SinglePageHashTable) Capacity() int {
	return (PageSize - htSlotsOff) / (htKeySize + ht.valueSize)
}

func (ht *SinglePageHashTable) slotOffset(i int) int {
	return htSlotsOff + i*(htKeySize+ht.valueSize)
}

func (ht *SinglePageHashTable) initSlots() {
	capacity := ht.Capacity()
	for i := 0; i < capacity; i++ {
		off := ht.slotOffset(i)
		binary.LittleEndian.PutUint64(ht.buf[off:off+htKeySize], emptyKey)
	}
}

func (ht *SinglePageHashTable) slotKey(i int) uint64 {
	off := ht.slotOffset(i)
	return binary.LittleEndian.Uint64(ht.buf[off : off+htKeySize])
}

func (ht *SinglePageHashTable) hash(key uint64) uint64 {
	var kb [8]byte
	binary.LittleEndian.PutUint64(kb[:], key)
	d := xxhash.NewWithSeed(ht.seed)
	d.Write(kb[:])
	return d.Sum64()
}

// Insert places key/value into the table via linear-probe open
// addressing starting at hash(key) mod capacity. Fails with ErrPageFull
// if a full revolution finds no empty or matching slot, and rejects the
// sentinel empty-key value as an unsupported key (§4.6).
func (ht *SinglePageHashTable) Insert(key uint64, value []byte) error {
	if key == emptyKey {
		return fmt.Errorf("hash table: key 0x%x is reserved", emptyKey)
	}
	if len(value) != ht.valueSize {
		return fmt.Errorf("hash table: value must be %d bytes, got %d", ht.valueSize, len(value))
	}
	capacity := ht.Capacity()
	start := int(ht.hash(key) % uint64(capacity))
	for i := 0; i < capacity; i++ {
		slot := (start + i) % capacity
		k := ht.slotKey(slot)
		if k == emptyKey || k == key {
			off := ht.slotOffset(slot)
			binary.LittleEndian.PutUint64(ht.buf[off:off+htKeySize], key)
			copy(ht.buf[off+htKeySize:off+htKeySize+ht.valueSize], value)
			SetPageCRC(ht.buf)
			return nil
		}
	}
	return fmt.Errorf("%w: hash table page %d", ErrPageFull, ht.pageID)
}

// Get looks up key, returning ErrNotFound if the probe sequence reaches
// an empty slot (or completes a full revolution) without a match.
func (ht *SinglePageHashTable) Get(key uint64) ([]byte, error) {
	capacity := ht.Capacity()
	start := int(ht.hash(key) % uint64(capacity))
	for i := 0; i < capacity; i++ {
		slot := (start + i) % capacity
		k := ht.slotKey(slot)
		if k == emptyKey {
			return nil, fmt.Errorf("%w: key %d", ErrNotFound, key)
		}
		if k == key {
			off := ht.slotOffset(slot) + htKeySize
			return ht.buf[off : off+ht.valueSize], nil
		}
	}
	return nil, fmt.Errorf("%w: key %d", ErrNotFound, key)
}

// Data returns the underlying page buffer, for persistence via the
// buffer pool (UpdatePage).
func (ht *SinglePageHashTable) Data() []byte { return ht.buf }
