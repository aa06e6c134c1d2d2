package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-swara/synth"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

func newTanpuraCmd() *cobra.Command {
	var (
		saHz        float64
		firstString string
		cycles      int
		stereo      bool
		sampleRate  int
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "tanpura",
		Short: "Render a tanpura drone to WAV",
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := parseFirstString(firstString)
			if err != nil {
				return err
			}

			data, err := synth.GenerateTanpura(synth.TanpuraParams{
				SaHz:        saHz,
				FirstString: first,
				Cycles:      cycles,
				Stereo:      stereo,
				SampleRate:  sampleRate,
			})
			if err != nil {
				return err
			}

			if err := transcode.EncodeWAVFile(outPath, data, 16); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: Sa %.2f Hz, first string %s, %.1f s\n",
				outPath, saHz, first, data.Duration.Seconds())
			return nil
		},
	}

	cmd.Flags().Float64Var(&saHz, "sa", 130.81, "Sa frequency in Hz")
	cmd.Flags().StringVar(&firstString, "string", "pa", "first string tuning: pa, ma or ni")
	cmd.Flags().IntVar(&cycles, "cycles", 4, "number of 3.6 s pluck cycles")
	cmd.Flags().BoolVar(&stereo, "stereo", false, "render wide stereo instead of mono")
	cmd.Flags().IntVar(&sampleRate, "rate", 44100, "sample rate in Hz")
	cmd.Flags().StringVarP(&outPath, "out", "o", "tanpura.wav", "output WAV path")
	return cmd
}

// parseFirstString accepts the sargam names and the table labels.
func parseFirstString(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pa":
		return "P", nil
	case "m", "ma":
		return "m", nil
	case "n", "ni":
		return "N", nil
	default:
		return "", fmt.Errorf("first string must be pa, ma or ni, got %q", s)
	}
}
