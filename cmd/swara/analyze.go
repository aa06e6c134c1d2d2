package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-swara/algorithms/common"
	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
	"github.com/RyanBlaney/sonido-swara/practice"
	"github.com/RyanBlaney/sonido-swara/transcode"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		tonicHz       float64
		tolerance     float64
		systemName    string
		minConfidence float64
		frameSize     int
		hopSize       int
		bandPass      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Judge a recorded take against a tonic, frame by frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := swara.ParseSystem(systemName)
			if err != nil {
				return err
			}

			data, err := transcode.DecodeWAVFile(args[0])
			if err != nil {
				return err
			}

			settings := practice.DefaultSettings()
			settings.TonicHz = tonicHz
			settings.ToleranceCents = tolerance
			settings.System = system
			settings.MinConfidence = minConfidence
			settings.VocalBandPass = bandPass

			session, err := practice.NewSession(data.SampleRate, practice.Fixed(settings))
			if err != nil {
				return err
			}

			results, err := session.AnalyzeAll(data.PCM, frameSize, hopSize)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("%s: shorter than one analysis frame", args[0])
			}

			printFrames(cmd, results, hopSize, data.SampleRate)
			printSummary(cmd, results)
			return nil
		},
	}

	cmd.Flags().Float64Var(&tonicHz, "tonic", 261.63, "Sa frequency in Hz")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 15, "perfect-band half-width in cents")
	cmd.Flags().StringVar(&systemName, "system", "ji", "tuning system: ji or shruti")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.5, "confidence gate for note feedback")
	cmd.Flags().IntVar(&frameSize, "frame", 2048, "analysis frame size in samples")
	cmd.Flags().IntVar(&hopSize, "hop", 1024, "hop size in samples")
	cmd.Flags().BoolVar(&bandPass, "band-pass", false, "pre-filter to the vocal band (drone bleed)")
	return cmd
}

func printFrames(cmd *cobra.Command, results []practice.Result, hopSize, sampleRate int) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TIME\tFREQ HZ\tCONF\tNOTE\tCENTS\tJUDGEMENT")
	for i, r := range results {
		at := float64(i*hopSize) / float64(sampleRate)
		if r.Note == nil {
			fmt.Fprintf(w, "%.2f\t-\t%.2f\t-\t-\t-\n", at, r.Estimate.Confidence)
			continue
		}
		fmt.Fprintf(w, "%.2f\t%.1f\t%.2f\t%s\t%+.1f\t%s\n",
			at, r.Estimate.FrequencyHz, r.Estimate.Confidence,
			swara.FormatWithOctave(*r.Note), r.Note.CentsDeviation, judgement(*r.Note))
	}
}

func printSummary(cmd *cobra.Command, results []practice.Result) {
	type tally struct{ total, perfect, flat, sharp int }
	counts := make(map[string]*tally)
	var order []string
	var cents, absCents []float64
	voiced := 0
	perfect := 0

	for _, r := range results {
		if r.Note == nil {
			continue
		}
		voiced++
		cents = append(cents, r.Note.CentsDeviation)
		absCents = append(absCents, math.Abs(r.Note.CentsDeviation))
		label := swara.FormatWithOctave(*r.Note)
		c, ok := counts[label]
		if !ok {
			c = &tally{}
			counts[label] = c
			order = append(order, label)
		}
		c.total++
		switch {
		case r.Note.IsPerfect:
			c.perfect++
			perfect++
		case r.Note.IsFlat:
			c.flat++
		default:
			c.sharp++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nframes %d, with note %d (%.1f%%)\n",
		len(results), voiced, 100*float64(voiced)/float64(len(results)))
	if voiced == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NOTE\tFRAMES\tPERFECT\tFLAT\tSHARP")
	for _, label := range order {
		c := counts[label]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", label, c.total, c.perfect, c.flat, c.sharp)
	}
	w.Flush()
	fmt.Fprintf(out, "perfect %d/%d (%.1f%%)\n", perfect, voiced, 100*float64(perfect)/float64(voiced))
	fmt.Fprintf(out, "intonation: mean %+.1f cents, spread %.1f, |cents| p90 %.1f\n",
		common.Mean(cents), common.StandardDeviation(cents), common.Percentile(absCents, 0.9))
}

func judgement(n swara.Note) string {
	switch {
	case n.IsPerfect:
		return "perfect"
	case n.IsFlat:
		return "flat"
	default:
		return "sharp"
	}
}
