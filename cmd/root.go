package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global output flags only
	verbose      bool
	quiet        bool
	outputFormat string
	cfgFile      string
	lenient      bool
)

var rootCmd = &cobra.Command{
	Use:   "go-apfs",
	Short: "Cross-platform APFS filesystem explorer and extractor",
	Long: `go-apfs is a cross-platform, read-only command-line tool for exploring
and searching Apple File System (APFS) volumes.

Works directly with raw disks, partitions, or container images without
mounting or relying on macOS. Ideal for data recovery, forensic analysis,
and backup verification.

Commands:
  discover    Find files by name, extension, size, or date
  list        List volumes, snapshots, or files
  extract     Extract files, directories, or volumes`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.go-apfs.yaml)")

	// Only global output control flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&lenient, "lenient", false, "relax the B-tree node free-space bounds check for images known to trip it (never enable unless a strict parse already failed)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("lenient", rootCmd.PersistentFlags().Lookup("lenient"))
}

// initConfig reads defaults from a config file, letting a caller pin
// output preferences once instead of repeating flags on every invocation.
// Flags explicitly set on the command line still win over the file.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".go-apfs")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		if !rootCmd.PersistentFlags().Changed("verbose") {
			verbose = viper.GetBool("verbose")
		}
		if !rootCmd.PersistentFlags().Changed("quiet") {
			quiet = viper.GetBool("quiet")
		}
		if !rootCmd.PersistentFlags().Changed("output") {
			outputFormat = viper.GetString("output")
		}
		if !rootCmd.PersistentFlags().Changed("lenient") {
			lenient = viper.GetBool("lenient")
		}
	}
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quiet
}

// GetOutputFormat returns the output format
func GetOutputFormat() string {
	return outputFormat
}

// GetLenient returns whether the node free-space bounds check should be
// relaxed for this invocation.
func GetLenient() bool {
	return lenient
}
