package cvd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSparse(t *testing.T) {
	dir := t.TempDir()

	sparse := filepath.Join(dir, "super.img")
	require.NoError(t, os.WriteFile(sparse, append([]byte{0x3A, 0xFF, 0x26, 0xED}, make([]byte, 28)...), 0o644))

	raw := filepath.Join(dir, "userdata.img")
	require.NoError(t, os.WriteFile(raw, make([]byte, 32), 0o644))

	short := filepath.Join(dir, "tiny.img")
	require.NoError(t, os.WriteFile(short, []byte{0x3A}, 0o644))

	got, err := IsSparse(sparse)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = IsSparse(raw)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = IsSparse(short)
	require.NoError(t, err)
	assert.False(t, got, "files shorter than the magic are not sparse")

	_, err = IsSparse(filepath.Join(dir, "absent.img"))
	assert.Error(t, err)
}

func TestBootconfigText(t *testing.T) {
	t.Run("X86_64 Software Rendering", func(t *testing.T) {
		text := bootconfigText(ArchX86_64, false)
		assert.Contains(t, text, "androidboot.boot_devices=pci0000:00/0000:00:0f.0")
		assert.Contains(t, text, "androidboot.hardware.egl=angle")
		assert.NotContains(t, text, "mesa")
	})

	t.Run("Aarch64 Virgl", func(t *testing.T) {
		text := bootconfigText(ArchAarch64, true)
		assert.Contains(t, text, "androidboot.boot_devices=4010000000.pcie")
		assert.Contains(t, text, "androidboot.hardware.egl=mesa")
		assert.Contains(t, text, "hwcomposer.mode=client")
		assert.NotContains(t, text, "angle")
	})

	t.Run("Common Properties Always Present", func(t *testing.T) {
		for _, arch := range []Arch{ArchX86_64, ArchAarch64} {
			for _, virgl := range []bool{false, true} {
				text := bootconfigText(arch, virgl)
				assert.True(t, strings.HasPrefix(text, "androidboot.hypervisor.protected_vm.supported=0\n"))
				assert.Contains(t, text, "androidboot.serialno=CUTTLEFISHCVD011")
			}
		}
	})
}

func TestParseArch(t *testing.T) {
	for in, want := range map[string]Arch{
		"x86_64":  ArchX86_64,
		"amd64":   ArchX86_64,
		"aarch64": ArchAarch64,
		"arm64":   ArchAarch64,
	} {
		got, err := ParseArch(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseArch("riscv64")
	assert.Error(t, err)
}
