package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spec(name string, size uint64) PartitionSpec {
	return PartitionSpec{Name: name, Type: TypeLinuxFilesystem, Size: size, Source: BlankSource{}}
}

func TestPlan_SingleBootPartition(t *testing.T) {
	l, err := Plan([]PartitionSpec{spec("boot", 10_000_000)}, Options{})
	require.NoError(t, err)

	placements := l.Placements()
	require.Len(t, placements, 1)

	assert.Equal(t, uint64(1_048_576), placements[0].Start)
	assert.Equal(t, uint64(11_048_576), placements[0].End)
	assert.Equal(t, uint64(11_534_336)+BackupReserve(DefaultEntryCapacity), l.TotalSize())

	first, last := placements[0].Sectors()
	assert.Equal(t, uint64(2048), first)
	assert.Equal(t, uint64(2048+19532-1), last, "10 MB rounds up to 19532 sectors")
}

func TestPlan_AlignmentAndNonOverlap(t *testing.T) {
	specs := []PartitionSpec{
		spec("misc", 1<<20),
		spec("boot_a", 10_000_000),
		spec("boot_b", 10_000_000),
		spec("super", 3_221_225_472),
		spec("userdata", 5_000_001),
		spec("metadata", 64<<20),
	}

	l, err := Plan(specs, Options{})
	require.NoError(t, err)

	placements := l.Placements()
	require.Len(t, placements, len(specs))

	for i, p := range placements {
		assert.Zerof(t, p.Start%(1<<20), "partition %d start %d not grain aligned", i, p.Start)
		assert.Equal(t, p.Start+p.Spec.Size, p.End)
		if i > 0 {
			assert.LessOrEqual(t, placements[i-1].End, p.Start, "partition %d overlaps its predecessor", i)
		}
	}

	last := placements[len(placements)-1]
	assert.GreaterOrEqual(t, l.TotalSize(), last.End+BackupReserve(DefaultEntryCapacity))
}

func TestPlan_DuplicateName(t *testing.T) {
	_, err := Plan([]PartitionSpec{spec("vendor", 1024), spec("vendor", 2048)}, Options{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "vendor")
}

func TestPlan_CapacityExceeded(t *testing.T) {
	specs := make([]PartitionSpec, 130)
	for i := range specs {
		specs[i] = spec(fmt.Sprintf("part%03d", i), 4096)
	}

	_, err := Plan(specs, Options{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "130")
	assert.Contains(t, verr.Error(), "128")
}

func TestPlan_EmptyLayout(t *testing.T) {
	t.Run("Disallowed By Default", func(t *testing.T) {
		_, err := Plan(nil, Options{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("Allowed When Requested", func(t *testing.T) {
		l, err := Plan(nil, Options{AllowEmpty: true})
		require.NoError(t, err)
		assert.Empty(t, l.Placements())
		assert.Equal(t, uint64(DefaultReservedPrefix)+BackupReserve(DefaultEntryCapacity), l.TotalSize())
	})
}

func TestPlan_ZeroSizeSpec(t *testing.T) {
	_, err := Plan([]PartitionSpec{spec("frp", 0)}, Options{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "frp")
}

func TestPlan_RejectsBadOptions(t *testing.T) {
	t.Run("Unaligned Grain", func(t *testing.T) {
		_, err := Plan([]PartitionSpec{spec("boot", 1024)}, Options{Grain: 1000})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("Prefix Too Small For Entry Array", func(t *testing.T) {
		_, err := Plan([]PartitionSpec{spec("boot", 1024)}, Options{ReservedPrefix: 4096, Grain: 4096})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestPlan_CursorRoundsBetweenPartitions(t *testing.T) {
	// 73728 bytes is well under one grain, so each partition occupies
	// exactly one 1 MiB slot.
	specs := []PartitionSpec{
		spec("uboot_env", 73728),
		spec("vbmeta", 65536),
		spec("frp", 1<<20),
		spec("bootconfig", 73728),
	}

	l, err := Plan(specs, Options{})
	require.NoError(t, err)

	placements := l.Placements()
	assert.Equal(t, uint64(1<<20), placements[0].Start)
	assert.Equal(t, uint64(2<<20), placements[1].Start)
	assert.Equal(t, uint64(3<<20), placements[2].Start)
	assert.Equal(t, uint64(4<<20), placements[3].Start)
	assert.Equal(t, uint64(5<<20)+BackupReserve(DefaultEntryCapacity), l.TotalSize())
}
