// Package sector provides the size and alignment arithmetic shared by the
// partition planner, the GPT serializer and the image assembler.
package sector

const (
	// LogicalSize is the logical sector size of produced disk images.
	// Only 512-byte sectors are supported.
	LogicalSize = 512

	// DefaultGrain is the default partition-start alignment.
	DefaultGrain = 1 << 20 // 1 MiB
)

// AlignUp rounds n up to the next multiple of align. Values that are
// already aligned are returned unchanged. An align of zero leaves n as is.
func AlignUp(n, align uint64) uint64 {
	if align == 0 || n%align == 0 {
		return n
	}
	return ((n / align) + 1) * align
}

// SectorsFor returns the number of logical sectors needed to hold n bytes.
func SectorsFor(n uint64) uint64 {
	return (n + LogicalSize - 1) / LogicalSize
}

// BytesToSectors converts a byte count to sectors. The count must already
// be sector aligned; remainders are discarded.
func BytesToSectors(n uint64) uint64 {
	return n / LogicalSize
}

// SectorsToBytes converts a sector count to bytes.
func SectorsToBytes(s uint64) uint64 {
	return s * LogicalSize
}
