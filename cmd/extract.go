package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-forensics/apfs/pkg/app"
	"github.com/go-forensics/apfs/pkg/services"
)

var (
	// Source and destination (extract-specific)
	extractSource string
	extractDest   string

	// Extraction options (extract-specific)
	extractRecursive  bool
	preserveMetadata  bool
	preservePerms     bool
	overwriteExisting bool
	verifyExtraction  bool

	volumeName   string
	volumeID     uint64
	snapshotName string
)

var extractCmd = &cobra.Command{
	Use:   "extract [container-path]",
	Short: "Extract files, directories, or volumes",
	Long: `Extract files from APFS containers.

Examples:
  # Extract entire volume
  go-apfs extract /dev/disk2 --volume-name "Macintosh HD" --dest ./backup --recursive

  # Extract specific directory
  go-apfs extract /dev/disk2 --source /Users/alice --dest ./alice-backup --recursive

  # Extract a single file
  go-apfs extract backup.dmg --source /Documents/report.pdf --dest ./report.pdf`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Source and destination (extract-specific flags only)
	extractCmd.Flags().StringVarP(&extractSource, "source", "s", "", "source path (default: entire volume)")
	extractCmd.Flags().StringVarP(&extractDest, "dest", "d", "", "destination path (required)")
	extractCmd.MarkFlagRequired("dest")

	// Extraction behavior
	extractCmd.Flags().BoolVarP(&extractRecursive, "recursive", "r", false, "extract recursively")
	extractCmd.Flags().BoolVar(&preserveMetadata, "preserve-metadata", true, "preserve metadata (accepted but not applied)")
	extractCmd.Flags().BoolVar(&preservePerms, "preserve-perms", true, "preserve permissions (accepted but not applied; files are created with mode 0644)")
	extractCmd.Flags().BoolVar(&overwriteExisting, "overwrite", false, "overwrite existing files")
	extractCmd.Flags().BoolVar(&verifyExtraction, "verify", false, "verify extraction integrity (accepted but not applied)")

	// Volume/snapshot selection
	extractCmd.Flags().StringVar(&volumeName, "volume-name", "", "volume name to extract from")
	extractCmd.Flags().Uint64Var(&volumeID, "volume-id", 0, "volume ID to extract from")
	extractCmd.Flags().StringVar(&snapshotName, "snapshot", "", "snapshot to extract from (accepted but not applied; files come from the volume's current tree)")
	extractCmd.MarkFlagsMutuallyExclusive("volume-name", "volume-id")
}

func runExtract(containerPath string) error {
	ctx := app.NewContext()
	ctx.OutputFormat = GetOutputFormat()
	ctx.Verbose = GetVerbose()
	ctx.Quiet = GetQuiet()
	ctx.Lenient = GetLenient()

	containerSvc := services.NewLenientContainerService(ctx.Lenient)
	defer containerSvc.Close()
	fsSvc := services.NewFilesystemService(containerSvc)

	volumes, err := containerSvc.ListVolumes(ctx, containerPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", containerPath, err)
	}
	targetVolume, err := resolveExtractVolume(volumes)
	if err != nil {
		return err
	}

	source := extractSource
	if source == "" {
		source = "/"
	}

	info, err := fsSvc.GetFileInfo(ctx, containerPath, targetVolume, source)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", source, err)
	}

	if info.Type == "directory" {
		if !extractRecursive {
			return fmt.Errorf("%s is a directory; pass --recursive to extract it", source)
		}
		return extractDirectory(ctx, fsSvc, containerPath, targetVolume, source, extractDest)
	}
	return extractOneFile(ctx, fsSvc, containerPath, targetVolume, source, extractDest)
}

func resolveExtractVolume(volumes []services.VolumeInfo) (uint64, error) {
	switch {
	case volumeName != "":
		for _, v := range volumes {
			if v.Name == volumeName {
				return v.ObjectID, nil
			}
		}
		return 0, fmt.Errorf("volume not found: %s", volumeName)
	case volumeID != 0:
		for _, v := range volumes {
			if v.ObjectID == volumeID {
				return v.ObjectID, nil
			}
		}
		return 0, fmt.Errorf("volume id %d not found", volumeID)
	case len(volumes) > 0:
		return volumes[0].ObjectID, nil
	default:
		return 0, fmt.Errorf("container has no volumes")
	}
}

func extractDirectory(ctx *app.Context, fsSvc services.FilesystemService, containerPath string, volumeID uint64, srcPath, destRoot string) error {
	entries, err := fsSvc.ListDirectory(ctx, containerPath, volumeID, srcPath)
	if err != nil {
		return fmt.Errorf("list %s: %w", srcPath, err)
	}

	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destRoot, err)
	}

	for _, e := range entries {
		dest := filepath.Join(destRoot, e.Name)
		if e.Type == "directory" {
			if err := extractDirectory(ctx, fsSvc, containerPath, volumeID, e.Path, dest); err != nil {
				return err
			}
			continue
		}
		if err := extractOneFile(ctx, fsSvc, containerPath, volumeID, e.Path, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractOneFile(ctx *app.Context, fsSvc services.FilesystemService, containerPath string, volumeID uint64, srcPath, destPath string) error {
	if !overwriteExisting {
		if _, err := os.Stat(destPath); err == nil {
			return fmt.Errorf("%s already exists; pass --overwrite to replace it", destPath)
		}
	}

	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	n, err := fsSvc.ExtractFile(ctx, containerPath, volumeID, srcPath, out)
	if err != nil {
		return fmt.Errorf("extract %s: %w", srcPath, err)
	}

	if ctx.Verbose {
		ctx.Log(fmt.Sprintf("extracted %s -> %s (%d bytes)", srcPath, destPath, n))
	}
	return nil
}
