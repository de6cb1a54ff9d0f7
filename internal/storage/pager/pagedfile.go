package pager

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ───────────────────────────────────────────────────────────────────────────
// Paged file
// ───────────────────────────────────────────────────────────────────────────
//
// PagedFile is the bottom of the stack: page-granular read, write, and
// append against a flat file opened with direct I/O, no caching of its
// own. Every buffer crossing this boundary must be PageSize bytes and
// PageSize-aligned, per §4.2 and §6.

// PagedFile is an unbuffered, page-granular file.
type PagedFile struct {
	file     *os.File
	pageSize int
}

// OpenPagedFile opens (creating if necessary) the file at path for
// page-granular direct I/O. When direct is false the O_DIRECT flag is
// omitted — useful on filesystems or test environments that reject it,
// at the cost of the OS page cache sitting between this layer and the
// disk.
func OpenPagedFile(path string, direct bool) (*PagedFile, error) {
	flags := os.O_RDWR | os.O_CREATE
	if direct {
		flags |= unix.O_DIRECT
	}
	fd, err := unix.Open(path, flags, 0644)
	if err != nil {
		if direct && errors.Is(err, unix.EINVAL) {
			// Some filesystems (tmpfs, overlay) reject O_DIRECT outright;
			// fall back rather than fail outright, as potpot's own source
			// assumed a POSIX O_DIRECT facility that is not universally
			// available — §1 Non-goals waives cross-platform portability,
			// but a hard failure here would make the core untestable on
			// such filesystems.
			fd, err = unix.Open(path, os.O_RDWR|os.O_CREATE, 0644)
		}
		if err != nil {
			return nil, fmt.Errorf("open paged file %q: %w", path, err)
		}
	}
	f := os.NewFile(uintptr(fd), path)
	return &PagedFile{file: f, pageSize: PageSize}, nil
}

// PageSize returns the page size this file was opened with.
func (pf *PagedFile) PageSize() int { return pf.pageSize }

// Close closes the underlying file descriptor.
func (pf *PagedFile) Close() error { return pf.file.Close() }

// ReadPage reads exactly PageSize bytes at page_no*PageSize into out.
// Returns ErrNotFound if the page does not exist (short read at EOF).
func (pf *PagedFile) ReadPage(pageNo PageID, out *AlignedBuffer) error {
	off := int64(pageNo) * int64(pf.pageSize)
	n, err := pf.file.ReadAt(out.Bytes(), off)
	if n == pf.pageSize {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: page %d", ErrNotFound, pageNo)
	}
	return fmt.Errorf("read page %d: %w", pageNo, err)
}

// WritePage writes exactly PageSize bytes from in at page_no*PageSize,
// then fsyncs the file's data. The write must land at the exact offset;
// a partial write is a fatal I/O error.
func (pf *PagedFile) WritePage(pageNo PageID, in *AlignedBuffer) error {
	off := int64(pageNo) * int64(pf.pageSize)
	n, err := pf.file.WriteAt(in.Bytes(), off)
	if err != nil {
		return fmt.Errorf("write page %d: %w", pageNo, err)
	}
	if n != pf.pageSize {
		return fmt.Errorf("write page %d: short write of %d bytes", pageNo, n)
	}
	return pf.syncData()
}

// AppendPage writes in at the current end of the file and returns the
// newly assigned PageID. Fails if the current file length is not an
// exact multiple of PageSize — that invariant having been broken is a
// programmer/corruption error, not a recoverable condition.
func (pf *PagedFile) AppendPage(in *AlignedBuffer) (PageID, error) {
	info, err := pf.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat paged file: %w", err)
	}
	size := info.Size()
	if size%int64(pf.pageSize) != 0 {
		return 0, fmt.Errorf("append page: file length %d not a multiple of page size %d", size, pf.pageSize)
	}
	pageNo := PageID(size / int64(pf.pageSize))
	n, err := pf.file.WriteAt(in.Bytes(), size)
	if err != nil {
		return 0, fmt.Errorf("append page: %w", err)
	}
	if n != pf.pageSize {
		return 0, fmt.Errorf("append page: short write of %d bytes", n)
	}
	if err := pf.syncData(); err != nil {
		return 0, err
	}
	return pageNo, nil
}

// syncData flushes file data (not necessarily metadata) to stable
// storage, matching the source's sync_data() call after every write.
func (pf *PagedFile) syncData() error {
	if err := unix.Fdatasync(int(pf.file.Fd())); err != nil {
		return fmt.Errorf("fdatasync: %w", err)
	}
	return nil
}
