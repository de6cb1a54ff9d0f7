package pager

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestSinglePageHashTable_Capacity(t *testing.T) {
	bp := openTestBufferPool(t, 2)
	ht, err := NewSinglePageHashTable(bp, 8, 42)
	if err != nil {
		t.Fatalf("NewSinglePageHashTable: %v", err)
	}
	want := (PageSize - htSlotsOff) / (htKeySize + 8)
	if got := ht.Capacity(); got != want {
		t.Fatalf("Capacity() = %d, want %d", got, want)
	}
}

// TestSinglePageHashTable_InsertGetRoundtrip exercises the insert/get
// slot-state decision from §4.6: inserting under capacity and reading
// every key back, including a miss for a key never inserted.
func TestSinglePageHashTable_InsertGetRoundtrip(t *testing.T) {
	bp := openTestBufferPool(t, 4)
	ht, err := NewSinglePageHashTable(bp, 8, 7)
	if err != nil {
		t.Fatalf("NewSinglePageHashTable: %v", err)
	}

	values := make(map[uint64][]byte)
	n := ht.Capacity() / 2
	for i := 0; i < n; i++ {
		key := uint64(i*97 + 3)
		val := make([]byte, 8)
		binary.LittleEndian.PutUint64(val, key*2)
		if err := ht.Insert(key, val); err != nil {
			t.Fatalf("Insert(%d): %v", key, err)
		}
		values[key] = val
	}

	for key, want := range values {
		got, err := ht.Get(key)
		if err != nil {
			t.Fatalf("Get(%d): %v", key, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get(%d) = %x, want %x", key, got, want)
		}
	}

	if _, err := ht.Get(999999999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing): got %v, want ErrNotFound", err)
	}
}

// TestSinglePageHashTable_FullRevolutionFails checks that once every
// slot holds a distinct key, inserting one more distinct key fails
// rather than looping forever.
func TestSinglePageHashTable_FullRevolutionFails(t *testing.T) {
	bp := openTestBufferPool(t, 4)
	ht, err := NewSinglePageHashTable(bp, 1, 0)
	if err != nil {
		t.Fatalf("NewSinglePageHashTable: %v", err)
	}
	capacity := ht.Capacity()
	for i := 0; i < capacity; i++ {
		if err := ht.Insert(uint64(i+1), []byte{byte(i)}); err != nil {
			t.Fatalf("Insert(%d): %v", i+1, err)
		}
	}
	if err := ht.Insert(uint64(capacity)+1000, []byte{0xFF}); !errors.Is(err, ErrPageFull) {
		t.Fatalf("Insert past capacity: got %v, want ErrPageFull", err)
	}
}

// TestSinglePageHashTable_Persistence writes through the pool and
// reloads via FromPage, checking CRC/type validation round-trips.
func TestSinglePageHashTable_Persistence(t *testing.T) {
	bp := openTestBufferPool(t, 4)
	ht, err := NewSinglePageHashTable(bp, 4, 123)
	if err != nil {
		t.Fatalf("NewSinglePageHashTable: %v", err)
	}
	if err := ht.Insert(42, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	buf := NewAlignedBuffer()
	buf.CopyFromSlice(ht.Data())
	if err := bp.UpdatePage(ht.PageID(), buf); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	reloaded, err := FromPage(bp, ht.PageID())
	if err != nil {
		t.Fatalf("FromPage: %v", err)
	}
	got, err := reloaded.Get(42)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("Get after reload = %x, want 01020304", got)
	}
}
