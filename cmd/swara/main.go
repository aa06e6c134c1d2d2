// Command swara is the practice toolkit CLI: analyze a recorded take
// against a tonic, estimate the tonic itself, and render reference audio
// (tanpura drone, Karplus-Strong plucks) to WAV.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-swara/logging"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "swara",
		Short: "Hindustani pitch practice toolkit",
		Long: `Offline analysis and reference synthesis for Hindustani vocal practice.

Recordings are judged against a tonic (Sa) frequency: every detected pitch
is mapped to the nearest swara of the chosen tuning system and classified
as perfect, flat or sharp within a cents tolerance.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger := logging.NewDefaultLogger()
				logger.SetLevel(logging.DebugLevel)
				logging.SetGlobalLogger(logger)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(),
		newTonicCmd(),
		newTanpuraCmd(),
		newPluckCmd(),
		newSwarasCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
