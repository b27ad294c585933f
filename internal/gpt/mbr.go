package gpt

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-cvdisk/internal/sector"
)

const (
	// mbrPartitionOffset is where the first MBR partition record starts.
	mbrPartitionOffset = 446

	// protectivePartitionType marks the single MBR record that covers the
	// whole GPT disk, keeping legacy tools from treating it as free space.
	protectivePartitionType = 0xEE
)

// protectiveMBR builds the legacy first sector of a GPT disk: one
// non-bootable partition record of type 0xEE spanning from LBA 1 to the
// end of the disk (capped at the 32-bit limit), plus the 0x55AA boot
// signature.
func protectiveMBR(totalSectors uint64) []byte {
	mbr := make([]byte, sector.LogicalSize)

	rec := mbr[mbrPartitionOffset : mbrPartitionOffset+16]
	rec[0] = 0x00                             // boot flag cleared
	rec[1], rec[2], rec[3] = 0x00, 0x02, 0x00 // CHS of LBA 1
	rec[4] = protectivePartitionType
	rec[5], rec[6], rec[7] = 0xFF, 0xFF, 0xFF // CHS end, saturated

	binary.LittleEndian.PutUint32(rec[8:12], 1) // first LBA

	size := totalSectors - 1
	if size > 0xFFFFFFFF {
		size = 0xFFFFFFFF
	}
	binary.LittleEndian.PutUint32(rec[12:16], uint32(size))

	mbr[510] = 0x55
	mbr[511] = 0xAA
	return mbr
}
