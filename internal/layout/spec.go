// Package layout turns an ordered set of partition specifications into a
// validated, aligned, non-overlapping disk layout ready for GPT
// serialization.
package layout

// PartitionType is a stable identifier for the kind of partition being
// created. The GPT serializer maps each type to its partition-type GUID.
type PartitionType uint8

const (
	// TypeLinuxFilesystem is the generic Linux filesystem data type used
	// for all Cuttlefish image partitions.
	TypeLinuxFilesystem PartitionType = iota

	// TypeEFISystem marks an EFI system partition.
	TypeEFISystem
)

// PartitionSpec describes one partition to be placed on a disk image:
// its name (unique within a layout), its type, the number of bytes its
// content requires, and a handle to that content. Slice order defines
// table order.
type PartitionSpec struct {
	Name   string
	Type   PartitionType
	Size   uint64
	Source Source
}
