package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/diarize-pipeline/orchestrator"
)

func newSummarizeCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <folder>",
		Short: "Recount segments and speech time from existing .txt reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := env.load(cmd.Flags(), nil)
			if err != nil {
				return err
			}
			paths, err := filepath.Glob(filepath.Join(args[0], "*.txt"))
			if err != nil {
				return err
			}
			sort.Strings(paths)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "report\tnum_segments\tspeech_s\tavg_segment_duration_s")
			for _, p := range paths {
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				st, err := orchestrator.ParseReport(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", filepath.Base(p), st.Segments, st.Duration, st.Average())
			}
			log.WithField("reports", len(paths)).Debug("summarized")
			return tw.Flush()
		},
	}
}
