package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-swara/algorithms/swara"
)

func newSwarasCmd() *cobra.Command {
	var (
		tonicHz    float64
		systemName string
	)

	cmd := &cobra.Command{
		Use:   "swaras",
		Short: "Print the swara table for a tuning system and tonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := swara.ParseSystem(systemName)
			if err != nil {
				return err
			}
			if tonicHz <= 0 {
				return fmt.Errorf("tonic frequency must be positive, got %v", tonicHz)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SWARA\tRATIO\tMANDRA HZ\tMADHYA HZ\tTAAR HZ")
			for _, entry := range swara.TableFor(system) {
				hz := tonicHz * entry.Ratio
				fmt.Fprintf(w, "%s\t%.6f\t%.2f\t%.2f\t%.2f\n",
					entry.Label, entry.Ratio, hz/2, hz, hz*2)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Float64Var(&tonicHz, "tonic", 261.63, "Sa frequency in Hz")
	cmd.Flags().StringVar(&systemName, "system", "ji", "tuning system: ji or shruti")
	return cmd
}
