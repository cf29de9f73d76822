package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version, Go toolchain and platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		return writeVersion(cmd.OutOrStdout(), short)
	},
}

// writeVersion prints the version stamped by the build. The long form adds
// the toolchain and target platform, which matter for the cgo sqlite driver.
func writeVersion(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, version)
		return err
	}
	_, err := fmt.Fprintf(w, "ai-orchestrator %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
