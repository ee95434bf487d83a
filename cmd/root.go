// Package cmd implements the media-intel command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the media-intel command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "media-intel",
		Short: "Media intelligence dashboard for media-mention CSV exports",
		Long: `media-intel loads CSV exports of media mentions, lets you slice them by
platform, sentiment, media type, location and date, and asks a language model
for a campaign strategy summary of the current selection.

Run "media-intel serve" to start the dashboard.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newInspectCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
