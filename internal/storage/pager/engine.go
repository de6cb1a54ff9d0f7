package pager

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/SimonWaldherr/potpot/internal/engineconfig"
	"github.com/SimonWaldherr/potpot/internal/storage"
)

// ───────────────────────────────────────────────────────────────────────────
// Engine
// ───────────────────────────────────────────────────────────────────────────
//
// Engine wires a BufferPool to a one-page master record (PageTypeMaster-
// Record, page 0) that identifies the paged file: minted once at
// creation via storage.NewInstanceID, read back unchanged on every
// subsequent open.

const masterRecordUUIDOff = htSlotsOff // 0x18, the same "past the fixed
// header fields" convention the hash page uses for its slot area.

// Engine is the top-level handle a caller opens: a buffer pool plus the
// file's identity.
type Engine struct {
	Pool       *BufferPool
	InstanceID uuid.UUID
	HashSeed   uint64
}

// Open opens (or creates) the data file named in cfg, wires it to a
// clock-replacement BufferPool, and establishes the master record.
func Open(cfg *engineconfig.Config) (*Engine, error) {
	if cfg.PageSize != 0 && cfg.PageSize != PageSize {
		return nil, fmt.Errorf("engine: config page_size %d does not match build page size %d", cfg.PageSize, PageSize)
	}

	pf, err := OpenPagedFile(cfg.DataPath, cfg.DirectIO)
	if err != nil {
		return nil, err
	}
	pool := NewBufferPool(pf, BufferPoolConfig{Frames: cfg.PoolFrames})

	instanceID, _, err := loadOrCreateMasterRecord(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	seed := cfg.HashSeed
	if !cfg.HasExplicitSeed() {
		seed = storage.RandomHashSeed()
	}

	return &Engine{Pool: pool, InstanceID: instanceID, HashSeed: seed}, nil
}

// loadOrCreateMasterRecord reads page 0 if it exists, or mints and
// writes a fresh master record (with a new instance id) if the file is
// empty. Returns whether a new record was created.
func loadOrCreateMasterRecord(pool *BufferPool) (uuid.UUID, bool, error) {
	out := NewAlignedBuffer()
	err := pool.ReadPage(0, out)
	if err == nil {
		raw := out.Bytes()
		if !VerifyPageCRC(raw) {
			return uuid.UUID{}, false, fmt.Errorf("%w: master record", ErrCRCMismatch)
		}
		pt, terr := readPageType(raw)
		if terr != nil {
			return uuid.UUID{}, false, terr
		}
		if pt != PageTypeMasterRecord {
			return uuid.UUID{}, false, fmt.Errorf("%w: page 0 is not a master record", ErrPageTypeMismatch)
		}
		var id uuid.UUID
		copy(id[:], raw[masterRecordUUIDOff:masterRecordUUIDOff+16])
		return id, false, nil
	}

	page := NewFramedPage(PageTypeMasterRecord)
	id := storage.NewInstanceID()
	copy(page.Bytes()[masterRecordUUIDOff:masterRecordUUIDOff+16], storage.UUIDToBytes(id))
	SetPageCRC(page.Bytes())

	pageID, appendErr := pool.AppendPage(page)
	if appendErr != nil {
		return uuid.UUID{}, false, fmt.Errorf("create master record: %w", appendErr)
	}
	if pageID != 0 {
		return uuid.UUID{}, false, fmt.Errorf("create master record: expected page 0, got %d", pageID)
	}
	return id, true, nil
}
