package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/diarize-pipeline/clients"
	cfg "github.com/maastricht-university/diarize-pipeline/config"
	"github.com/maastricht-university/diarize-pipeline/errs"
)

type healthChecker interface {
	Health(ctx context.Context, url string) error
}

func newCheckCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the configured model services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := env.load(cmd.Flags(), nil)
			if err != nil {
				return err
			}
			hc := clients.NewHTTP(cfg.DurSeconds(conf.Services.TimeoutSeconds))
			return checkServices(cmd, hc, conf)
		},
	}
}

func checkServices(cmd *cobra.Command, hc healthChecker, conf *cfg.Root) error {
	services := []struct {
		name, url string
	}{
		{"vad", conf.Services.VAD.URL},
		{"embedding", conf.Services.Embedding.URL},
		{"clustering", conf.Services.Clustering.URL},
	}

	var failed []error
	out := cmd.OutOrStdout()
	for _, s := range services {
		if s.url == "" {
			fmt.Fprintf(out, "%-10s not configured\n", s.name)
			continue
		}
		if err := hc.Health(cmd.Context(), s.url); err != nil {
			fmt.Fprintf(out, "%-10s FAIL %s: %v\n", s.name, s.url, err)
			failed = append(failed, err)
			continue
		}
		fmt.Fprintf(out, "%-10s ok   %s\n", s.name, s.url)
	}
	if len(failed) > 0 {
		return errs.Service("check", errors.Join(failed...), "%d service(s) unreachable", len(failed))
	}
	return nil
}
