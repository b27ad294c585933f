// Package gpt serializes a disk layout into the structural byte blocks of
// a GUID Partition Table (protective MBR, primary and backup headers,
// primary and backup entry arrays) and decodes those structures back for
// inspection. All multi-byte fields are little-endian regardless of host
// byte order.
package gpt

import (
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-cvdisk/internal/layout"
	"github.com/deploymenttheory/go-cvdisk/internal/sector"
)

const (
	// HeaderSize is the defined size of the GPT header structure. The
	// rest of its sector is zero.
	HeaderSize = 92

	// EntrySize is the size of one partition entry record.
	EntrySize = layout.EntrySize

	// NameFieldLen is the fixed width of the entry name field in UTF-16
	// code units.
	NameFieldLen = 36

	revision  = 0x00010000
	signature = "EFI PART"
)

// Header is the GPT header record, occupying the first HeaderSize bytes
// of its sector. The same structure describes the primary header at LBA 1
// and the backup header at the last LBA; only the self/backup locations
// and the entry array location differ.
type Header struct {
	Signature      [8]byte
	Revision       uint32
	HeaderSize     uint32
	HeaderCRC32    uint32
	Reserved       uint32
	CurrentLBA     uint64
	BackupLBA      uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	DiskGUID       [16]byte
	EntriesLBA     uint64
	EntryCount     uint32
	EntrySize      uint32
	EntriesCRC32   uint32
}

// Entry is one fixed-size partition record in the entry array.
type Entry struct {
	TypeGUID   [16]byte
	UniqueGUID [16]byte
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       [NameFieldLen]uint16
}

// NameString decodes the entry's UTF-16 name field up to its first NUL.
func (e Entry) NameString() string {
	for i, c := range e.Name {
		if c == 0 {
			return string(utf16.Decode(e.Name[:i]))
		}
	}
	return string(utf16.Decode(e.Name[:]))
}

// IsZero reports whether the entry slot is unused.
func (e Entry) IsZero() bool {
	return e.TypeGUID == [16]byte{}
}

// Block is one structural byte region at a fixed absolute offset on the
// output disk.
type Block struct {
	Offset uint64
	Data   []byte
}

// Table holds the serialized structural blocks of one GPT disk image.
// Given the same layout and disk GUID, its bytes are identical on every
// serialization.
type Table struct {
	DiskGUID uuid.UUID

	ProtectiveMBR  []byte
	PrimaryHeader  []byte
	PrimaryEntries []byte
	BackupEntries  []byte
	BackupHeader   []byte

	backupEntriesOffset uint64
	backupHeaderOffset  uint64
}

// Blocks returns every structural block with its absolute disk offset,
// in ascending offset order.
func (t *Table) Blocks() []Block {
	return []Block{
		{Offset: 0, Data: t.ProtectiveMBR},
		{Offset: sector.LogicalSize, Data: t.PrimaryHeader},
		{Offset: 2 * sector.LogicalSize, Data: t.PrimaryEntries},
		{Offset: t.backupEntriesOffset, Data: t.BackupEntries},
		{Offset: t.backupHeaderOffset, Data: t.BackupHeader},
	}
}

// encodeName converts a partition name to the fixed-width UTF-16 field.
// Names that do not fit are an error, never silently truncated.
func encodeName(name string) ([NameFieldLen]uint16, error) {
	var field [NameFieldLen]uint16
	units := utf16.Encode([]rune(name))
	if len(units) > NameFieldLen {
		return field, &layout.ValidationError{
			Reason: fmt.Sprintf("partition name %q exceeds the %d-unit GPT name field", name, NameFieldLen),
		}
	}
	copy(field[:], units)
	return field, nil
}
