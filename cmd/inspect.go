package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-cvdisk/internal/gpt"
	"github.com/deploymenttheory/go-cvdisk/internal/sector"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Decode and verify the partition table of a disk image",
	Long: `inspect reads a raw GPT disk image, verifies the protective MBR, both
header checksums and the entry-array checksum, and prints the decoded
partition table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	info, err := gpt.ReadTable(f, uint64(fi.Size()))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("Disk:            %s (%d bytes, %d sectors)\n", path, fi.Size(), sector.BytesToSectors(uint64(fi.Size())))
	fmt.Printf("Disk GUID:       %s\n", info.DiskGUID())
	fmt.Printf("Primary header:  LBA %d, backup at LBA %d\n", info.Primary.CurrentLBA, info.Primary.BackupLBA)
	fmt.Printf("Backup header:   LBA %d\n", info.Backup.CurrentLBA)
	fmt.Printf("Usable range:    LBA %d - %d\n", info.Primary.FirstUsableLBA, info.Primary.LastUsableLBA)
	fmt.Printf("Entries:         %d of %d slots used\n\n", len(info.Entries), info.Primary.EntryCount)

	fmt.Printf("%-22s %12s %12s %14s  %s\n", "NAME", "FIRST LBA", "LAST LBA", "SIZE", "GUID")
	for _, e := range info.Entries {
		size := sector.SectorsToBytes(e.LastLBA - e.FirstLBA + 1)
		fmt.Printf("%-22s %12d %12d %14d  %s\n", e.NameString(), e.FirstLBA, e.LastLBA, size, gpt.EntryGUID(e))
	}

	return nil
}
