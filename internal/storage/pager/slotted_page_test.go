package pager

import (
	"bytes"
	"errors"
	"testing"
)

// TestSlottedPage_Empty checks the starting state of a freshly
// initialised page.
func TestSlottedPage_Empty(t *testing.T) {
	buf := NewAlignedBuffer()
	sp := NewSlottedPage(buf.Bytes())

	if got := sp.endOfFreeSpace(); got != PageSize {
		t.Fatalf("end_of_free_space = %d, want %d", got, PageSize)
	}
	if got := sp.RecordCount(); got != 0 {
		t.Fatalf("record_count = %d, want 0", got)
	}
	if got, want := sp.FreeSpace(), PageSize-slotHeaderSize; got != want {
		t.Fatalf("free_space = %d, want %d", got, want)
	}
}

// TestSlottedPage_Insert reproduces concrete scenario 4.
func TestSlottedPage_Insert(t *testing.T) {
	buf := NewAlignedBuffer()
	sp := NewSlottedPage(buf.Bytes())

	id0, err := sp.InsertRecord([]byte("new record"))
	if err != nil {
		t.Fatalf("insert 0: %v", err)
	}
	id1, err := sp.InsertRecord([]byte("second record"))
	if err != nil {
		t.Fatalf("insert 1: %v", err)
	}
	if id0 != 0 || id1 != 1 {
		t.Fatalf("record ids = (%d, %d), want (0, 1)", id0, id1)
	}

	wantEnd := PageSize - len("new record") - len("second record")
	if got := sp.endOfFreeSpace(); got != wantEnd {
		t.Fatalf("end_of_free_space = %d, want %d", got, wantEnd)
	}
	if got := sp.RecordCount(); got != 2 {
		t.Fatalf("record_count = %d, want 2", got)
	}

	rec0, err := sp.GetRecord(id0)
	if err != nil || !bytes.Equal(rec0, []byte("new record")) {
		t.Fatalf("GetRecord(0) = %q, %v", rec0, err)
	}
	rec1, err := sp.GetRecord(id1)
	if err != nil || !bytes.Equal(rec1, []byte("second record")) {
		t.Fatalf("GetRecord(1) = %q, %v", rec1, err)
	}
	if _, err := sp.GetRecord(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRecord(2): got %v, want ErrNotFound", err)
	}
}

// TestSlottedPage_Fill reproduces concrete scenario 5: insert fixed-size
// records until the page is exactly full, verifying every record reads
// back correctly and free_space reaches exactly zero.
func TestSlottedPage_Fill(t *testing.T) {
	buf := NewAlignedBuffer()
	sp := NewSlottedPage(buf.Bytes())

	rec := bytes.Repeat([]byte{0xAB}, 1024)
	var ids []RecordID
	for {
		id, err := sp.InsertRecord(rec)
		if err != nil {
			break
		}
		ids = append(ids, id)
	}

	remaining := sp.FreeSpace() - slotEntrySize
	if remaining > 0 {
		last := bytes.Repeat([]byte{0xCD}, remaining)
		id, err := sp.InsertRecord(last)
		if err != nil {
			t.Fatalf("final insert of size %d: %v", remaining, err)
		}
		ids = append(ids, id)
	}

	if got := sp.FreeSpace(); got != 0 {
		t.Fatalf("free_space after fill = %d, want 0", got)
	}

	for _, id := range ids {
		if _, err := sp.GetRecord(id); err != nil {
			t.Fatalf("GetRecord(%d) after fill: %v", id, err)
		}
	}
}

// TestSlottedPage_EmptyRecordsConsumeHeaderOnly verifies that zero-length
// records still advance record_count and consume exactly their 4-byte
// directory entry.
func TestSlottedPage_EmptyRecordsConsumeHeaderOnly(t *testing.T) {
	buf := NewAlignedBuffer()
	sp := NewSlottedPage(buf.Bytes())

	before := sp.FreeSpace()
	if _, err := sp.InsertRecord(nil); err != nil {
		t.Fatalf("insert empty record: %v", err)
	}
	after := sp.FreeSpace()
	if before-after != slotEntrySize {
		t.Fatalf("free_space dropped by %d, want %d", before-after, slotEntrySize)
	}
}
