package gpt

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-cvdisk/internal/layout"
)

// Partition-type GUIDs, per the UEFI specification's registry.
var typeGUIDs = map[layout.PartitionType]uuid.UUID{
	layout.TypeLinuxFilesystem: uuid.MustParse("0FC63DAF-8483-4772-8E79-3D69D8477DE4"),
	layout.TypeEFISystem:       uuid.MustParse("C12A7328-F81F-11D2-BA4B-00A0C93EC93B"),
}

// PartitionGUID derives the unique GUID of a partition from the disk GUID
// and the partition name. The derivation is a name-based (version 5) UUID,
// so serializing the same layout with the same disk GUID always produces
// the same entry bytes.
func PartitionGUID(disk uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(disk, []byte(name))
}

// encodeGUID returns the on-disk GPT encoding of u. The first three UUID
// fields are stored little-endian, the remaining bytes verbatim (EFI
// specification, Appendix A).
func encodeGUID(u uuid.UUID) [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(b[8:], u[8:])
	return b
}

// decodeGUID inverts encodeGUID.
func decodeGUID(b [16]byte) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:])
	return u
}
