package cvd

// Component maps one source image file to a partition name. An Image of
// the form "blank:N" stands for N bytes of zeros with no backing file.
type Component struct {
	Image string `mapstructure:"image"`
	Name  string `mapstructure:"name"`
}

// A/B-slotted Android images share one source file per slot pair; the
// blank misc and metadata regions bracket the set. Identical for both
// supported architectures today, but keyed by architecture so a config
// override can diverge them.
var systemComponents = []Component{
	{Image: "blank:1048576", Name: "misc"},
	{Image: "boot.img", Name: "boot_a"},
	{Image: "boot.img", Name: "boot_b"},
	{Image: "init_boot.img", Name: "init_boot_a"},
	{Image: "init_boot.img", Name: "init_boot_b"},
	{Image: "vendor_boot.img", Name: "vendor_boot_a"},
	{Image: "vendor_boot.img", Name: "vendor_boot_b"},
	{Image: "vbmeta.img", Name: "vbmeta_a"},
	{Image: "vbmeta.img", Name: "vbmeta_b"},
	{Image: "vbmeta_system.img", Name: "vbmeta_system_a"},
	{Image: "vbmeta_system.img", Name: "vbmeta_system_b"},
	{Image: "vbmeta_vendor_dlkm.img", Name: "vbmeta_vendor_dlkm_a"},
	{Image: "vbmeta_vendor_dlkm.img", Name: "vbmeta_vendor_dlkm_b"},
	{Image: "vbmeta_system_dlkm.img", Name: "vbmeta_system_dlkm_a"},
	{Image: "vbmeta_system_dlkm.img", Name: "vbmeta_system_dlkm_b"},
	{Image: "super.img", Name: "super"},
	{Image: "userdata.img", Name: "userdata"},
	{Image: "blank:67108864", Name: "metadata"},
}

var propertiesComponents = []Component{
	{Image: "uboot_env.img", Name: "uboot_env"},
	{Image: "vbmeta.img", Name: "vbmeta"},
	{Image: "blank:1048576", Name: "frp"},
	{Image: "bootconfig", Name: "bootconfig"},
}

// SystemComponents returns the partition set of the main system disk for
// the given architecture.
func SystemComponents(Arch) []Component {
	return append([]Component(nil), systemComponents...)
}

// PropertiesComponents returns the partition set of the properties disk
// for the given architecture.
func PropertiesComponents(Arch) []Component {
	return append([]Component(nil), propertiesComponents...)
}
