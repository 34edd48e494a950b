package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/diarize-pipeline/orchestrator"
)

func newBatchCmd(env *environment) *cobra.Command {
	var numFiles int

	c := &cobra.Command{
		Use:   "batch <input_folder> <output_folder>",
		Short: "Diarize every WAV file in a folder and write reports plus metrics.csv",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := map[string]string{"output.json": "json"}
			for k, v := range pipelineBindings {
				bindings[k] = v
			}
			conf, log, err := env.load(cmd.Flags(), bindings)
			if err != nil {
				return err
			}
			p, err := orchestrator.NewPipeline(conf, log)
			if err != nil {
				return err
			}

			b := orchestrator.NewBatch(p, log,
				orchestrator.WithNumFiles(numFiles),
				orchestrator.WithJSON(conf.Output.JSON),
			)
			sum, err := b.Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total processing time: %.2fs for %d files\n", sum.Elapsed.Seconds(), sum.Files)
			return nil
		},
	}
	addPipelineFlags(c.Flags())
	c.Flags().IntVar(&numFiles, "num_files", 0, "process only the first N files by name (0 = all)")
	c.Flags().Bool("json", false, "also write a JSON result per file")
	return c
}
