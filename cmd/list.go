package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-forensics/apfs/pkg/app"
	"github.com/go-forensics/apfs/pkg/services"
)

var (
	// Volume/snapshot selection (list command only)
	listVolumeID   uint64
	listVolumeName string
	listSnapshot   string

	// What to list (list-specific)
	listVolumes   bool
	listSnapshots bool
	listFiles     bool

	// Path options (list-specific)
	listPath      string
	listRecursive bool
)

var listCmd = &cobra.Command{
	Use:   "list [container-path]",
	Short: "List volumes, snapshots, or files",
	Long: `List contents of APFS containers.

Examples:
  # List all volumes
  go-apfs list /dev/disk2 --volumes

  # List files in specific volume
  go-apfs list /dev/disk2 --volume-name "Data" --files --path /Users

  # List snapshots
  go-apfs list /dev/disk2 --volume-id 1 --snapshots`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	// Volume/snapshot selection
	listCmd.Flags().Uint64Var(&listVolumeID, "volume-id", 0, "volume ID to list from")
	listCmd.Flags().StringVar(&listVolumeName, "volume-name", "", "volume name to list from")
	listCmd.Flags().StringVar(&listSnapshot, "snapshot", "", "snapshot to list from (accepted but not applied; files come from the volume's current tree)")

	// What to list (list-specific flags only)
	listCmd.Flags().BoolVar(&listVolumes, "volumes", false, "list volumes")
	listCmd.Flags().BoolVar(&listSnapshots, "snapshots", false, "list snapshots")
	listCmd.Flags().BoolVar(&listFiles, "files", false, "list files")

	// Path options (when listing files)
	listCmd.Flags().StringVarP(&listPath, "path", "p", "/", "path to list")
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "recursive listing")

	// Mutual exclusions
	listCmd.MarkFlagsMutuallyExclusive("volume-id", "volume-name")
}

func runList(containerPath string) error {
	ctx := app.NewContext()
	ctx.OutputFormat = GetOutputFormat()
	ctx.Verbose = GetVerbose()
	ctx.Quiet = GetQuiet()
	ctx.Lenient = GetLenient()

	containerSvc := services.NewLenientContainerService(ctx.Lenient)
	defer containerSvc.Close()

	volumes, err := containerSvc.ListVolumes(ctx, containerPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", containerPath, err)
	}

	// Default to listing volumes if no specific option given.
	if !listVolumes && !listSnapshots && !listFiles {
		listVolumes = true
	}

	if listVolumes {
		printVolumeTable(volumes)
	}

	volumeID, err := resolveListVolume(volumes)
	if err != nil {
		if listSnapshots || listFiles {
			return err
		}
		return nil
	}

	if listSnapshots {
		fsSvc := services.NewFilesystemService(containerSvc)
		snaps, err := fsSvc.ListSnapshots(ctx, containerPath, volumeID)
		if err != nil {
			return fmt.Errorf("list snapshots: %w", err)
		}
		printSnapshotTable(snaps)
	}

	if listFiles {
		fsSvc := services.NewFilesystemService(containerSvc)
		if err := listDirectory(ctx, fsSvc, containerPath, volumeID, listPath); err != nil {
			return err
		}
	}

	return nil
}

func listDirectory(ctx *app.Context, fsSvc services.FilesystemService, containerPath string, volumeID uint64, dirPath string) error {
	entries, err := fsSvc.ListDirectory(ctx, containerPath, volumeID, dirPath)
	if err != nil {
		return fmt.Errorf("list %s: %w", dirPath, err)
	}
	printFileTable(entries)

	if !listRecursive {
		return nil
	}
	for _, e := range entries {
		if e.Type == "directory" {
			if err := listDirectory(ctx, fsSvc, containerPath, volumeID, e.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveListVolume(volumes []services.VolumeInfo) (uint64, error) {
	switch {
	case listVolumeName != "":
		for _, v := range volumes {
			if v.Name == listVolumeName {
				return v.ObjectID, nil
			}
		}
		return 0, fmt.Errorf("volume not found: %s", listVolumeName)
	case listVolumeID != 0:
		for _, v := range volumes {
			if v.ObjectID == listVolumeID {
				return v.ObjectID, nil
			}
		}
		return 0, fmt.Errorf("volume id %d not found", listVolumeID)
	case len(volumes) > 0:
		return volumes[0].ObjectID, nil
	default:
		return 0, fmt.Errorf("container has no volumes")
	}
}

func printVolumeTable(volumes []services.VolumeInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUUID\tFILES\tDIRS\tSNAPSHOTS")
	for _, v := range volumes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", v.ObjectID, v.Name, v.UUID, v.FileCount, v.DirectoryCount, v.SnapshotCount)
	}
	w.Flush()
}

func printSnapshotTable(snaps []services.SnapshotInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tXID\tCREATED")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name, s.Xid, s.CreateTime.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func printFileTable(entries []services.FileInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSIZE\tMODIFIED\tNAME")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Type, e.Size, e.Modified.Format("2006-01-02 15:04:05"), e.Path)
	}
	w.Flush()
}
