package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-cvdisk/internal/assemble"
	"github.com/deploymenttheory/go-cvdisk/internal/config"
	"github.com/deploymenttheory/go-cvdisk/internal/cvd"
	"github.com/deploymenttheory/go-cvdisk/internal/gpt"
	"github.com/deploymenttheory/go-cvdisk/internal/layout"
)

var (
	archFlag      string
	systemOut     string
	propsOut      string
	virglPropsOut string
	diskGUIDFlag  string
)

var createCmd = &cobra.Command{
	Use:   "create <cvd-dir>",
	Short: "Build disk images from an Android Cuttlefish directory",
	Long: `create converts the image files in a Cuttlefish directory into three
raw GPT disk images: the system disk, the properties disk and the virgl
variant of the properties disk. Sparse source images are converted to raw
form first; the persistent components of the properties disk are built
with the host-package tools in a temporary directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd.Context(), args[0])
	},
}

func init() {
	createCmd.Flags().StringVarP(&archFlag, "arch", "a", "", "architecture of the source images (x86_64, aarch64); defaults to the host")
	createCmd.Flags().StringVarP(&systemOut, "system", "s", "", "output file for the system disk image")
	createCmd.Flags().StringVarP(&propsOut, "props", "p", "", "output file for the properties disk image")
	createCmd.Flags().StringVar(&virglPropsOut, "virgl-props", "", "output file for the virgl variant of the properties disk image")
	createCmd.Flags().StringVar(&diskGUIDFlag, "disk-guid", "", "base GUID for deterministic, reproducible output images")

	rootCmd.AddCommand(createCmd)
}

func runCreate(ctx context.Context, cvdDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	arch := cvd.HostArch()
	if archFlag != "" {
		if arch, err = cvd.ParseArch(archFlag); err != nil {
			return err
		}
	}

	if systemOut == "" {
		systemOut = cfg.SystemImage
	}
	if propsOut == "" {
		propsOut = cfg.PropertiesImage
	}
	if virglPropsOut == "" {
		virglPropsOut = cfg.VirglPropertiesImage
	}

	// With --disk-guid every output is reproducible; otherwise each run
	// gets a fresh base and the per-image GUIDs still differ from each
	// other.
	base := uuid.New()
	if diskGUIDFlag != "" {
		if base, err = uuid.Parse(diskGUIDFlag); err != nil {
			return fmt.Errorf("parsing --disk-guid: %w", err)
		}
	}
	imageGUID := func(role string) uuid.UUID {
		return uuid.NewSHA1(base, []byte(role))
	}

	env := cvd.Env(cvdDir)

	logrus.Info("transforming sparse images if needed")
	if err := cvd.TransformSparseImages(cvdDir, env); err != nil {
		return err
	}

	logrus.WithField("output", systemOut).Info("creating system disk image")
	if err := buildImage(ctx, cfg, cvdDir, cfg.SystemTable(arch), systemOut, imageGUID("system")); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "cvdisk")
	if err != nil {
		return fmt.Errorf("creating temporary directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	logrus.Info("creating persistent components")
	if err := cvd.CreateUbootEnv(cvdDir, tmpDir, env); err != nil {
		return err
	}
	if err := cvd.CreateVbmeta(cvdDir, tmpDir, env); err != nil {
		return err
	}
	if err := cvd.CreateBootconfig(cvdDir, tmpDir, env, arch, false); err != nil {
		return err
	}

	logrus.WithField("output", propsOut).Info("creating properties disk image")
	if err := buildImage(ctx, cfg, tmpDir, cfg.PropertiesTable(arch), propsOut, imageGUID("properties")); err != nil {
		return err
	}

	// The virgl variant only differs in its bootconfig partition.
	if err := cvd.CreateBootconfig(cvdDir, tmpDir, env, arch, true); err != nil {
		return err
	}

	logrus.WithField("output", virglPropsOut).Info("creating virgl properties disk image")
	return buildImage(ctx, cfg, tmpDir, cfg.PropertiesTable(arch), virglPropsOut, imageGUID("properties_virgl"))
}

// buildImage runs the full pipeline for one output: resolve sources,
// plan the layout, serialize the GPT and assemble the file.
func buildImage(ctx context.Context, cfg *config.Config, srcDir string, components []cvd.Component, out string, diskGUID uuid.UUID) error {
	specs, err := cvd.Resolve(srcDir, components)
	if err != nil {
		return err
	}

	l, err := layout.Plan(specs, cfg.PlanOptions())
	if err != nil {
		return err
	}

	table, err := gpt.Serialize(l, diskGUID)
	if err != nil {
		return err
	}

	if err := assemble.Assemble(ctx, l, table, out); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"output":     out,
		"partitions": len(l.Placements()),
		"size":       l.TotalSize(),
	}).Debug("image assembled")
	return nil
}
