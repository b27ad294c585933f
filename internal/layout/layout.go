package layout

import "github.com/deploymenttheory/go-cvdisk/internal/sector"

const (
	// EntrySize is the size in bytes of one GPT partition entry.
	EntrySize = 128

	// DefaultEntryCapacity is the number of partition entries reserved in
	// the GPT entry array.
	DefaultEntryCapacity = 128

	// DefaultReservedPrefix is the room left at the start of the disk for
	// the protective MBR, the primary GPT header and the primary entry
	// array. 1 MiB keeps every partition start aligned for common grains.
	DefaultReservedPrefix = 1 << 20
)

// BackupReserve returns the number of bytes reserved at the end of the
// disk for the backup entry array and the backup GPT header.
func BackupReserve(entryCapacity int) uint64 {
	return uint64(entryCapacity)*EntrySize + sector.LogicalSize
}

// Placement fixes one partition at an absolute position on the disk.
// Start is the first content byte, End is Start plus the declared content
// size; the reserved region continues up to the next aligned start.
type Placement struct {
	Spec  PartitionSpec
	Start uint64
	End   uint64
}

// Sectors returns the inclusive first and last LBA of the placement's
// reserved region, per the GPT entry convention.
func (p Placement) Sectors() (first, last uint64) {
	first = sector.BytesToSectors(p.Start)
	last = first + sector.SectorsFor(p.Spec.Size) - 1
	return first, last
}

// ReservedSize returns the sector-rounded number of bytes set aside for
// the partition's content.
func (p Placement) ReservedSize() uint64 {
	return sector.SectorsToBytes(sector.SectorsFor(p.Spec.Size))
}

// DiskLayout is the finalized, validated set of partition positions for
// one output image. It is immutable once constructed by Plan and is the
// sole input to the GPT serializer and the image assembler.
type DiskLayout struct {
	placements    []Placement
	totalSize     uint64
	entryCapacity int
}

// Placements returns the partition placements in start-offset order.
func (l *DiskLayout) Placements() []Placement {
	out := make([]Placement, len(l.placements))
	copy(out, l.placements)
	return out
}

// TotalSize returns the full size of the output image in bytes.
func (l *DiskLayout) TotalSize() uint64 {
	return l.totalSize
}

// EntryCapacity returns the number of entries the GPT entry array must
// accommodate.
func (l *DiskLayout) EntryCapacity() int {
	return l.entryCapacity
}
