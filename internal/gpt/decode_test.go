package gpt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-cvdisk/internal/layout"
)

// imageBytes lays the structural blocks of table into a zero-filled
// buffer of the layout's total size, as the assembler would on disk.
func imageBytes(l *layout.DiskLayout, table *Table) []byte {
	img := make([]byte, l.TotalSize())
	for _, b := range table.Blocks() {
		copy(img[b.Offset:], b.Data)
	}
	return img
}

func TestReadTable_RoundTrip(t *testing.T) {
	l := testLayout(t,
		layout.PartitionSpec{Name: "uboot_env", Type: layout.TypeLinuxFilesystem, Size: 73728, Source: layout.BlankSource{}},
		layout.PartitionSpec{Name: "vbmeta", Type: layout.TypeLinuxFilesystem, Size: 65536, Source: layout.BlankSource{}},
		layout.PartitionSpec{Name: "bootconfig", Type: layout.TypeLinuxFilesystem, Size: 73728, Source: layout.BlankSource{}},
	)

	table, err := Serialize(l, testGUID)
	require.NoError(t, err)

	img := imageBytes(l, table)
	info, err := ReadTable(bytes.NewReader(img), l.TotalSize())
	require.NoError(t, err)

	assert.Equal(t, testGUID, info.DiskGUID())
	require.Len(t, info.Entries, 3)

	placements := l.Placements()
	for i, e := range info.Entries {
		p := placements[i]
		first, last := p.Sectors()

		assert.Equal(t, p.Spec.Name, e.NameString())
		assert.Equal(t, first, e.FirstLBA)
		assert.Equal(t, last, e.LastLBA)
		assert.Equal(t, PartitionGUID(testGUID, p.Spec.Name), EntryGUID(e))
	}

	assert.Equal(t, info.Backup.CurrentLBA, info.Primary.BackupLBA)
	assert.Equal(t, info.Primary.CurrentLBA, info.Backup.BackupLBA)
}

func TestReadTable_DetectsCorruption(t *testing.T) {
	l := bootAndSuper(t)
	table, err := Serialize(l, testGUID)
	require.NoError(t, err)

	t.Run("Flipped Header Byte", func(t *testing.T) {
		img := imageBytes(l, table)
		img[512+40] ^= 0xFF // FirstUsableLBA field of the primary header
		_, err := ReadTable(bytes.NewReader(img), l.TotalSize())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum")
	})

	t.Run("Flipped Entry Byte", func(t *testing.T) {
		img := imageBytes(l, table)
		img[2*512] ^= 0xFF
		_, err := ReadTable(bytes.NewReader(img), l.TotalSize())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum")
	})

	t.Run("Missing MBR Signature", func(t *testing.T) {
		img := imageBytes(l, table)
		img[510] = 0
		_, err := ReadTable(bytes.NewReader(img), l.TotalSize())
		require.Error(t, err)
	})
}
