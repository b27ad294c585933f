package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-cvdisk/internal/layout"
	"github.com/deploymenttheory/go-cvdisk/internal/sector"
)

// Serialize produces the structural blocks of a GPT disk for the given
// layout and disk GUID. Partition GUIDs are derived deterministically
// from the disk GUID and each partition name, so the result is
// byte-identical across invocations.
func Serialize(l *layout.DiskLayout, diskGUID uuid.UUID) (*Table, error) {
	totalSectors := sector.BytesToSectors(l.TotalSize())
	entriesBytes := uint64(l.EntryCapacity()) * EntrySize
	entriesSectors := sector.SectorsFor(entriesBytes)

	firstUsable := 2 + entriesSectors
	backupHeaderLBA := totalSectors - 1
	backupEntriesLBA := backupHeaderLBA - entriesSectors
	lastUsable := backupEntriesLBA - 1

	if totalSectors < 2+2*entriesSectors+2 || lastUsable < firstUsable {
		return nil, &layout.ValidationError{
			Reason: fmt.Sprintf("disk of %d sectors leaves no usable space after the GPT structures", totalSectors),
		}
	}

	entries, err := buildEntries(l, diskGUID, firstUsable, lastUsable)
	if err != nil {
		return nil, err
	}

	entriesCRC := crc32.ChecksumIEEE(entries)

	primary := Header{
		Revision:       revision,
		HeaderSize:     HeaderSize,
		CurrentLBA:     1,
		BackupLBA:      backupHeaderLBA,
		FirstUsableLBA: firstUsable,
		LastUsableLBA:  lastUsable,
		DiskGUID:       encodeGUID(diskGUID),
		EntriesLBA:     2,
		EntryCount:     uint32(l.EntryCapacity()),
		EntrySize:      EntrySize,
		EntriesCRC32:   entriesCRC,
	}
	copy(primary.Signature[:], signature)

	backup := primary
	backup.CurrentLBA = backupHeaderLBA
	backup.BackupLBA = 1
	backup.EntriesLBA = backupEntriesLBA

	backupEntries := make([]byte, len(entries))
	copy(backupEntries, entries)

	return &Table{
		DiskGUID:            diskGUID,
		ProtectiveMBR:       protectiveMBR(totalSectors),
		PrimaryHeader:       encodeHeader(primary),
		PrimaryEntries:      entries,
		BackupEntries:       backupEntries,
		BackupHeader:        encodeHeader(backup),
		backupEntriesOffset: sector.SectorsToBytes(backupEntriesLBA),
		backupHeaderOffset:  sector.SectorsToBytes(backupHeaderLBA),
	}, nil
}

// buildEntries encodes the full entry array: one record per placement
// followed by zeroed slots up to the array capacity.
func buildEntries(l *layout.DiskLayout, diskGUID uuid.UUID, firstUsable, lastUsable uint64) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, l.EntryCapacity()*EntrySize))

	for _, p := range l.Placements() {
		name, err := encodeName(p.Spec.Name)
		if err != nil {
			return nil, err
		}

		first, last := p.Sectors()
		if first < firstUsable || last > lastUsable {
			return nil, &layout.ValidationError{
				Reason: fmt.Sprintf("partition %q (LBA %d-%d) lies outside the usable range %d-%d", p.Spec.Name, first, last, firstUsable, lastUsable),
			}
		}

		typeGUID, ok := typeGUIDs[p.Spec.Type]
		if !ok {
			return nil, &layout.ValidationError{
				Reason: fmt.Sprintf("partition %q has unknown type %d", p.Spec.Name, p.Spec.Type),
			}
		}

		entry := Entry{
			TypeGUID:   encodeGUID(typeGUID),
			UniqueGUID: encodeGUID(PartitionGUID(diskGUID, p.Spec.Name)),
			FirstLBA:   first,
			LastLBA:    last,
			Name:       name,
		}
		if err := binary.Write(buf, binary.LittleEndian, entry); err != nil {
			return nil, fmt.Errorf("encoding entry %q: %w", p.Spec.Name, err)
		}
	}

	out := buf.Bytes()
	return append(out, make([]byte, l.EntryCapacity()*EntrySize-len(out))...), nil
}

// encodeHeader serializes h into a full sector. The header checksum is
// computed over the 92-byte structure with its checksum field zeroed and
// then written back; readers reject headers that skip this step.
func encodeHeader(h Header) []byte {
	h.HeaderCRC32 = 0

	buf := bytes.NewBuffer(make([]byte, 0, sector.LogicalSize))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		// Header is a fixed-size struct; this cannot fail at runtime.
		panic(err)
	}

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[16:20], crc32.ChecksumIEEE(out[:HeaderSize]))
	return append(out, make([]byte, sector.LogicalSize-len(out))...)
}
