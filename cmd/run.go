package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maastricht-university/diarize-pipeline/orchestrator"
)

func newRunCmd(env *environment) *cobra.Command {
	c := &cobra.Command{
		Use:   "run <audio>",
		Short: "Diarize one WAV file and print speaker turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := env.load(cmd.Flags(), pipelineBindings)
			if err != nil {
				return err
			}
			p, err := orchestrator.NewPipeline(conf, log)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return orchestrator.WriteReport(cmd.OutOrStdout(), res)
		},
	}
	addPipelineFlags(c.Flags())
	return c
}
