// Package cmd implements the diarize command line.
package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfg "github.com/maastricht-university/diarize-pipeline/config"
)

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd(os.Stderr).Execute()
}

// NewRootCmd builds the command tree. Logs go to logOut.
func NewRootCmd(logOut io.Writer) *cobra.Command {
	var configFile, logLevel string

	root := &cobra.Command{
		Use:           "diarize",
		Short:         "Speaker diarization: segment, embed and cluster WAV recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default config/$CONFIG_ENV/config.yaml or ./config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	env := &environment{
		configFile: &configFile,
		logOut:     logOut,
		persistent: root.PersistentFlags(),
	}
	root.AddCommand(
		newRunCmd(env),
		newBatchCmd(env),
		newSummarizeCmd(env),
		newConfigCmd(env),
		newCheckCmd(env),
	)
	return root
}

// environment loads configuration for a subcommand once its flags are parsed.
type environment struct {
	configFile *string
	logOut     io.Writer
	persistent *pflag.FlagSet
}

// load merges defaults, config file, env and the given flags (config key ->
// flag name) and builds the logger.
func (e *environment) load(flags *pflag.FlagSet, bindings map[string]string) (*cfg.Root, *logrus.Logger, error) {
	v, err := cfg.NewViper(*e.configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlag("pipeline.log_level", e.persistent.Lookup("log-level")); err != nil {
		return nil, nil, err
	}
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, nil, err
			}
		}
	}

	c, err := cfg.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return c, newLogger(c, e.logOut), nil
}

func newLogger(c *cfg.Root, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if c.Pipeline.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(c.Pipeline.LogLvl)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// pipelineBindings maps config keys to the flags shared by run and batch.
var pipelineBindings = map[string]string{
	"clustering.n_speakers":     "n_speakers",
	"segmentation.chunk_length": "chunk_length",
	"segmentation.strategy":     "segmenter",
	"audio.strict":              "strict",
	"embedding.backend":         "embedder",
	"clustering.linkage":        "linkage",
}

func addPipelineFlags(fs *pflag.FlagSet) {
	fs.Int("n_speakers", 2, "number of speakers to cluster into")
	fs.Float64("chunk_length", 1.5, "window length in seconds for the fixed segmenter")
	fs.String("segmenter", "fixed", "segmentation strategy: fixed or vad")
	fs.Bool("strict", false, "fail instead of resampling when the file is not at the model rate")
	fs.String("embedder", "spectral", "embedding backend: spectral or service")
	fs.String("linkage", "ward", "agglomerative linkage: ward, average, complete or single")
}
