// Package storage holds identity helpers shared by the paged-file core:
// minting a stable instance id for a freshly created data file, and
// deriving a hash-table seed when the caller hasn't supplied one.
package storage

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// ParseUUID parses a UUID string into uuid.UUID.
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// UUIDToBytes returns the 16-byte representation of a uuid.UUID.
func UUIDToBytes(u uuid.UUID) []byte {
	return u[:]
}

// NewInstanceID mints an identifier for a freshly created paged file,
// intended for the master-record page (page 0, PageType MasterRecord)
// written once at file creation.
func NewInstanceID() uuid.UUID {
	return uuid.New()
}

// RandomHashSeed derives a 64-bit seed for a SinglePageHashTable from a
// fresh UUID, used when engineconfig.Config.HashSeed is unset (§4.6's
// "new(buffer_pool, rng?)" contract — this is the "rng" path).
func RandomHashSeed() uint64 {
	id := uuid.New()
	return binary.LittleEndian.Uint64(id[:8])
}
