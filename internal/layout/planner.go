package layout

import "github.com/deploymenttheory/go-cvdisk/internal/sector"

// Options configure the partition planner. Zero values select the
// defaults, so Options{} plans a standard 1 MiB aligned GPT disk.
type Options struct {
	// Grain is the partition-start alignment in bytes. Must be a
	// multiple of the logical sector size.
	Grain uint64

	// ReservedPrefix is the room kept before the first partition for the
	// protective MBR, the primary header and the primary entry array.
	ReservedPrefix uint64

	// EntryCapacity is the size of the GPT entry array.
	EntryCapacity int

	// AllowEmpty permits planning a disk with no partitions.
	AllowEmpty bool
}

func (o Options) withDefaults() Options {
	if o.Grain == 0 {
		o.Grain = sector.DefaultGrain
	}
	if o.ReservedPrefix == 0 {
		o.ReservedPrefix = DefaultReservedPrefix
	}
	if o.EntryCapacity == 0 {
		o.EntryCapacity = DefaultEntryCapacity
	}
	return o
}

// structuralPrefix is the minimum room the GPT structures need at the
// start of the disk: the protective MBR sector, the header sector and
// the primary entry array.
func structuralPrefix(entryCapacity int) uint64 {
	return 2*sector.LogicalSize + uint64(entryCapacity)*EntrySize
}

// Plan walks the specs in order and assigns each a start and end offset:
// the cursor begins past the reserved prefix, is rounded up to the grain
// before every partition, and advances by the partition's declared size.
// After the last partition the cursor is rounded up once more and the
// backup GPT region is appended to form the total disk size.
//
// Plan performs no I/O. The returned layout satisfies the non-overlap
// and alignment invariants by construction.
func Plan(specs []PartitionSpec, opts Options) (*DiskLayout, error) {
	opts = opts.withDefaults()

	if opts.Grain%sector.LogicalSize != 0 {
		return nil, validationErrorf("alignment %d is not a multiple of the %d-byte sector size", opts.Grain, sector.LogicalSize)
	}
	if len(specs) == 0 && !opts.AllowEmpty {
		return nil, validationErrorf("no partitions given and empty layouts are not permitted")
	}
	if len(specs) > opts.EntryCapacity {
		return nil, validationErrorf("%d partitions exceed the %d-entry table capacity", len(specs), opts.EntryCapacity)
	}
	if opts.ReservedPrefix < structuralPrefix(opts.EntryCapacity) {
		return nil, validationErrorf("reserved prefix %d is smaller than the %d bytes the GPT structures occupy", opts.ReservedPrefix, structuralPrefix(opts.EntryCapacity))
	}

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Size == 0 {
			return nil, validationErrorf("partition %q has zero size", spec.Name)
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, validationErrorf("duplicate partition name %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}

	placements := make([]Placement, 0, len(specs))
	cursor := sector.AlignUp(opts.ReservedPrefix, opts.Grain)
	for _, spec := range specs {
		start := sector.AlignUp(cursor, opts.Grain)
		end := start + spec.Size
		placements = append(placements, Placement{Spec: spec, Start: start, End: end})
		cursor = end
	}

	total := sector.AlignUp(cursor, opts.Grain) + BackupReserve(opts.EntryCapacity)

	return &DiskLayout{
		placements:    placements,
		totalSize:     total,
		entryCapacity: opts.EntryCapacity,
	}, nil
}
