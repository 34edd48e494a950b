package cmd

import (
	"github.com/spf13/cobra"
)

func newConfigCmd(env *environment) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (token redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := env.load(cmd.Flags(), pipelineBindings)
			if err != nil {
				return err
			}
			out, err := conf.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	addPipelineFlags(c.Flags())
	return c
}
