package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-cvdisk/internal/sector"
)

// Info is the decoded view of one GPT disk: the verified primary and
// backup headers and the populated entries of the primary array.
type Info struct {
	Primary Header
	Backup  Header
	Entries []Entry
}

// DiskGUID returns the disk GUID in canonical form.
func (i *Info) DiskGUID() uuid.UUID {
	return decodeGUID(i.Primary.DiskGUID)
}

// EntryGUID returns the unique partition GUID of e in canonical form.
func EntryGUID(e Entry) uuid.UUID {
	return decodeGUID(e.UniqueGUID)
}

// ReadTable decodes and verifies the GPT structures of a disk image of
// diskSize bytes: the protective MBR signature, both headers (signature,
// size, self-location and checksum) and the entry-array checksum.
func ReadTable(r io.ReaderAt, diskSize uint64) (*Info, error) {
	if diskSize%sector.LogicalSize != 0 || diskSize < 4*sector.LogicalSize {
		return nil, fmt.Errorf("implausible disk size %d", diskSize)
	}
	totalSectors := sector.BytesToSectors(diskSize)

	mbr := make([]byte, sector.LogicalSize)
	if _, err := r.ReadAt(mbr, 0); err != nil {
		return nil, fmt.Errorf("reading protective MBR: %w", err)
	}
	if mbr[510] != 0x55 || mbr[511] != 0xAA {
		return nil, fmt.Errorf("missing MBR boot signature")
	}
	if mbr[mbrPartitionOffset+4] != protectivePartitionType {
		return nil, fmt.Errorf("first MBR partition is type %#02x, not protective (0xEE)", mbr[mbrPartitionOffset+4])
	}

	primary, err := readHeader(r, 1)
	if err != nil {
		return nil, fmt.Errorf("primary header: %w", err)
	}
	backup, err := readHeader(r, totalSectors-1)
	if err != nil {
		return nil, fmt.Errorf("backup header: %w", err)
	}

	if primary.BackupLBA != backup.CurrentLBA || backup.BackupLBA != primary.CurrentLBA {
		return nil, fmt.Errorf("headers do not cross-reference: primary points at LBA %d, backup lives at LBA %d", primary.BackupLBA, backup.CurrentLBA)
	}

	entries, err := readEntries(r, primary)
	if err != nil {
		return nil, err
	}

	return &Info{Primary: primary, Backup: backup, Entries: entries}, nil
}

// readHeader reads and verifies a single GPT header at the given LBA.
func readHeader(r io.ReaderAt, lba uint64) (Header, error) {
	var h Header
	raw := make([]byte, HeaderSize)
	if _, err := r.ReadAt(raw, int64(sector.SectorsToBytes(lba))); err != nil {
		return h, fmt.Errorf("reading LBA %d: %w", lba, err)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &h); err != nil {
		return h, err
	}

	if string(h.Signature[:]) != signature {
		return h, fmt.Errorf("bad signature %q", h.Signature[:])
	}
	if h.HeaderSize != HeaderSize {
		return h, fmt.Errorf("unsupported header size %d", h.HeaderSize)
	}
	if h.CurrentLBA != lba {
		return h, fmt.Errorf("header claims LBA %d but was read from LBA %d", h.CurrentLBA, lba)
	}

	// The stored checksum covers the header with its checksum field zeroed.
	stored := h.HeaderCRC32
	binary.LittleEndian.PutUint32(raw[16:20], 0)
	if sum := crc32.ChecksumIEEE(raw); sum != stored {
		return h, fmt.Errorf("header checksum %#08x does not match computed %#08x", stored, sum)
	}

	return h, nil
}

// readEntries reads the entry array referenced by h, verifies its
// checksum and returns the populated slots.
func readEntries(r io.ReaderAt, h Header) ([]Entry, error) {
	if h.EntrySize != EntrySize {
		return nil, fmt.Errorf("unsupported entry size %d", h.EntrySize)
	}

	raw := make([]byte, uint64(h.EntryCount)*uint64(h.EntrySize))
	if _, err := r.ReadAt(raw, int64(sector.SectorsToBytes(h.EntriesLBA))); err != nil {
		return nil, fmt.Errorf("reading entry array at LBA %d: %w", h.EntriesLBA, err)
	}
	if sum := crc32.ChecksumIEEE(raw); sum != h.EntriesCRC32 {
		return nil, fmt.Errorf("entry array checksum %#08x does not match computed %#08x", h.EntriesCRC32, sum)
	}

	reader := bytes.NewReader(raw)
	var entries []Entry
	for i := uint32(0); i < h.EntryCount; i++ {
		var e Entry
		if err := binary.Read(reader, binary.LittleEndian, &e); err != nil {
			return nil, fmt.Errorf("decoding entry %d: %w", i, err)
		}
		if !e.IsZero() {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
