package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-swara/tonic"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

func newTonicCmd() *cobra.Command {
	var (
		minConfidence float64
		minVoiced     int
	)

	cmd := &cobra.Command{
		Use:   "tonic <file.wav>",
		Short: "Estimate the singer's Sa from a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := transcode.DecodeWAVFile(args[0])
			if err != nil {
				return err
			}

			params := tonic.DefaultParams()
			params.MinConfidence = minConfidence
			params.MinVoicedFrames = minVoiced

			result, err := tonic.NewEstimatorWithParams(params).EstimateFromAudio(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sa = %.2f Hz (%s), from %d voiced of %d frames\n\n",
				result.SaHz, result.Name, result.VoicedFrames, result.TotalFrames)

			w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CANDIDATE\tHZ\tSCORE")
			for i, cand := range tonic.Candidates() {
				marker := ""
				if cand.Name == result.Name {
					marker = "  <-"
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.1f%s\n", cand.Name, cand.Hz, result.CandidateScores[i], marker)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.6, "confidence gate for voting frames")
	cmd.Flags().IntVar(&minVoiced, "min-voiced", 10, "voiced frames required for an estimate")
	return cmd
}
