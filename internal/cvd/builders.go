package cvd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Env returns the environment the Cuttlefish host tools expect, rooted
// at the image directory.
func Env(dir string) []string {
	return append(os.Environ(),
		"HOME="+dir,
		"ANDROID_TZDATA_ROOT="+dir,
		"ANDROID_ROOT="+dir,
	)
}

const (
	// avbPartitionSize is the fixed partition size avbtool footers the
	// u-boot environment and bootconfig images to.
	avbPartitionSize = "73728"

	// vbmetaPaddedSize is the size the chained vbmeta image is zero
	// padded to.
	vbmetaPaddedSize = 65536

	ubootEnvText = `uenvcmd=setenv bootargs "$cbootargs console=hvc0 earlycon=pl011,mmio32,0x9000000 " && run bootcmd_android`
)

const bootconfigBase = `androidboot.hypervisor.protected_vm.supported=0
androidboot.modem_simulator_ports=9600
androidboot.lcd_density=320
androidboot.vendor.audiocontrol.server.port=9410
androidboot.vendor.audiocontrol.server.cid=3
androidboot.cuttlefish_config_server_port=6800
androidboot.vendor.vehiclehal.server.port=9300
androidboot.fstab_suffix=cf.f2fs.hctr2
androidboot.enable_confirmationui=0
androidboot.hypervisor.vm.supported=0
androidboot.serialno=CUTTLEFISHCVD011
androidboot.setupwizard_mode=DISABLED
androidboot.cpuvulkan.version=4202496
androidboot.ddr_size=4915MB
androidboot.hardware.angle_feature_overrides_enabled=preferLinearFilterForYUV:mapUnspecifiedColorSpaceToPassThrough
androidboot.enable_bootanimation=1
androidboot.hardware.gralloc=minigbm
androidboot.vendor.vehiclehal.server.cid=2
androidboot.hypervisor.version=cf-qemu_cli
androidboot.hardware.vulkan=pastel
androidboot.opengles.version=196609
androidboot.wifi_mac_prefix=5554
androidboot.vsock_tombstone_port=6600
androidboot.hardware.hwcomposer=ranchu
androidboot.serialconsole=0
`

const (
	bootconfigBootX86_64 = `androidboot.boot_devices=pci0000:00/0000:00:0f.0,pci0000:00/0000:00:10.0
`
	bootconfigBootAarch64 = `androidboot.boot_devices=4010000000.pcie
`
	bootconfigRenderSW = `androidboot.hardware.egl=angle
`
	bootconfigRenderVirgl = `androidboot.hardware.egl=mesa
androidboot.hardware.hwcomposer.display_finder_mode=drm
androidboot.hardware.hwcomposer.mode=client
`
)

func testKeyPath(dir string) string {
	return filepath.Join(dir, "etc", "cvd_avb_testkey.pem")
}

// CreateUbootEnv builds the signed u-boot environment image in tmpDir
// from the fixed boot command, using mkenvimage_slim and avbtool from the
// host package in dir.
func CreateUbootEnv(dir, tmpDir string, env []string) error {
	inputPath := filepath.Join(tmpDir, "uboot_env_input")
	if err := os.WriteFile(inputPath, []byte(ubootEnvText), 0o644); err != nil {
		return errors.Wrap(err, "writing u-boot environment input")
	}

	envImage := filepath.Join(tmpDir, "uboot_env.img")
	if err := runHostTool(dir, env, "mkenvimage_slim",
		"-output_path", envImage,
		"-input_path", inputPath,
	); err != nil {
		return err
	}

	return runHostTool(dir, env, "avbtool",
		"add_hash_footer",
		"--image", envImage,
		"--partition_size", avbPartitionSize,
		"--partition_name", "uboot_env",
		"--key", testKeyPath(dir),
		"--algorithm", "SHA256_RSA4096",
	)
}

// CreateVbmeta builds the chained vbmeta image for the properties disk
// in tmpDir and zero pads it to its fixed partition size.
func CreateVbmeta(dir, tmpDir string, env []string) error {
	vbmetaPath := filepath.Join(tmpDir, "vbmeta.img")
	pubkey := filepath.Join(dir, "etc", "cvd.avbpubkey")

	if err := runHostTool(dir, env, "avbtool",
		"make_vbmeta_image",
		"--output", vbmetaPath,
		"--chain_partition", "uboot_env:1:"+pubkey,
		"--chain_partition", "bootconfig:2:"+pubkey,
		"--key", testKeyPath(dir),
		"--algorithm", "SHA256_RSA4096",
	); err != nil {
		return err
	}

	return padFile(vbmetaPath, vbmetaPaddedSize)
}

// CreateBootconfig writes the boot-time property set for the given
// architecture and render mode to tmpDir and signs it with avbtool.
// Rebuilding with virgl=true overwrites the previous bootconfig, which
// is how the virgl properties image is produced.
func CreateBootconfig(dir, tmpDir string, env []string, arch Arch, virgl bool) error {
	bootconfigPath := filepath.Join(tmpDir, "bootconfig")
	if err := os.WriteFile(bootconfigPath, []byte(bootconfigText(arch, virgl)), 0o644); err != nil {
		return errors.Wrap(err, "writing bootconfig")
	}

	return runHostTool(dir, env, "avbtool",
		"add_hash_footer",
		"--image", bootconfigPath,
		"--partition_size", avbPartitionSize,
		"--partition_name", "bootconfig",
		"--key", testKeyPath(dir),
		"--algorithm", "SHA256_RSA4096",
	)
}

// bootconfigText assembles the property set for one architecture and
// render mode.
func bootconfigText(arch Arch, virgl bool) string {
	text := bootconfigBase
	switch arch {
	case ArchAarch64:
		text += bootconfigBootAarch64
	default:
		text += bootconfigBootX86_64
	}
	if virgl {
		text += bootconfigRenderVirgl
	} else {
		text += bootconfigRenderSW
	}
	return text
}

// padFile extends the file at path with zeros up to size bytes.
func padFile(path string, size int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.Size() >= size {
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return errors.Wrapf(err, "padding %s to %d bytes", path, size)
	}
	return nil
}
