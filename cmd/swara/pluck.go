package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
	"github.com/RyanBlaney/sonido-swara/synth"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

func newPluckCmd() *cobra.Command {
	var (
		freq       float64
		duration   time.Duration
		decay      float64
		brightness float64
		seed       int64
		sampleRate int
		scale      bool
		tonicHz    float64
		systemName string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "pluck",
		Short: "Render a Karplus-Strong reference pluck (or a whole scale) to WAV",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := synth.PluckParams{
				FrequencyHz: freq,
				Duration:    duration,
				Decay:       decay,
				Brightness:  brightness,
				Seed:        seed,
				SampleRate:  sampleRate,
			}

			var (
				data *transcode.AudioData
				err  error
			)
			if scale {
				system, perr := swara.ParseSystem(systemName)
				if perr != nil {
					return perr
				}
				data, err = synth.RenderScale(tonicHz, system, params)
			} else {
				data, err = synth.GeneratePluck(params)
			}
			if err != nil {
				return err
			}

			if err := transcode.EncodeWAVFile(outPath, data, 16); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %.1f s\n", outPath, data.Duration.Seconds())
			return nil
		},
	}

	cmd.Flags().Float64Var(&freq, "freq", 220, "pluck frequency in Hz")
	cmd.Flags().DurationVar(&duration, "duration", time.Second, "length of each pluck")
	cmd.Flags().Float64Var(&decay, "decay", 0.996, "string damping per circulation, (0, 1]")
	cmd.Flags().Float64Var(&brightness, "brightness", 0.4, "0 = mellow, 1 = harsh")
	cmd.Flags().Int64Var(&seed, "seed", 1, "noise burst seed")
	cmd.Flags().IntVar(&sampleRate, "rate", 44100, "sample rate in Hz")
	cmd.Flags().BoolVar(&scale, "scale", false, "render one pluck per swara instead of a single tone")
	cmd.Flags().Float64Var(&tonicHz, "tonic", 261.63, "Sa frequency for --scale")
	cmd.Flags().StringVar(&systemName, "system", "ji", "tuning system for --scale: ji or shruti")
	cmd.Flags().StringVarP(&outPath, "out", "o", "pluck.wav", "output WAV path")
	return cmd
}
