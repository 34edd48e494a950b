package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

type Service struct {
	URL string `mapstructure:"url" yaml:"url"`
}
type Services struct {
	VAD            Service `mapstructure:"vad" yaml:"vad"`
	Embedding      Service `mapstructure:"embedding" yaml:"embedding"`
	Clustering     Service `mapstructure:"clustering" yaml:"clustering"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}
type Audio struct {
	SampleRate int  `mapstructure:"sample_rate" yaml:"sample_rate"`
	Strict     bool `mapstructure:"strict" yaml:"strict"`
}
type Segmentation struct {
	Strategy    string  `mapstructure:"strategy" yaml:"strategy"`
	ChunkLength float64 `mapstructure:"chunk_length" yaml:"chunk_length"`
	MinDuration float64 `mapstructure:"min_duration" yaml:"min_duration"`
}
type Embedding struct {
	Backend   string `mapstructure:"backend" yaml:"backend"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
}
type Clustering struct {
	Backend   string `mapstructure:"backend" yaml:"backend"`
	NSpeakers int    `mapstructure:"n_speakers" yaml:"n_speakers"`
	Linkage   string `mapstructure:"linkage" yaml:"linkage"`
}
type Output struct {
	JSON bool `mapstructure:"json" yaml:"json"`
}
type Auth struct {
	Token string `mapstructure:"token" yaml:"token"`
}
type Root struct {
	Pipeline struct {
		LogLvl    string `mapstructure:"log_level" yaml:"log_level"`
		LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	} `mapstructure:"pipeline" yaml:"pipeline"`
	Audio        Audio        `mapstructure:"audio" yaml:"audio"`
	Segmentation Segmentation `mapstructure:"segmentation" yaml:"segmentation"`
	Embedding    Embedding    `mapstructure:"embedding" yaml:"embedding"`
	Clustering   Clustering   `mapstructure:"clustering" yaml:"clustering"`
	Services     Services     `mapstructure:"services" yaml:"services"`
	Output       Output       `mapstructure:"output" yaml:"output"`
	Auth         Auth         `mapstructure:"auth" yaml:"auth"`
}

// TokenEnv is the environment variable holding the model-hub access token.
const TokenEnv = "HF_TOKEN"

var defaults = map[string]any{
	"pipeline.log_level":         "info",
	"pipeline.log_format":        "text",
	"audio.sample_rate":          16000,
	"audio.strict":               false,
	"segmentation.strategy":      "fixed",
	"segmentation.chunk_length":  1.5,
	"segmentation.min_duration":  0.5,
	"embedding.backend":          "spectral",
	"embedding.batch_size":       32,
	"clustering.backend":         "local",
	"clustering.n_speakers":      2,
	"clustering.linkage":         "ward",
	"services.vad.url":           "",
	"services.embedding.url":     "",
	"services.clustering.url":    "",
	"services.timeout_seconds":   300,
	"output.json":                false,
	"auth.token":                 "",
}

// NewViper returns a viper instance with defaults, the config file (if any)
// and environment overrides applied. When file is empty the usual locations
// are tried: config/$CONFIG_ENV/config.yaml, then config.yaml.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("DIARIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("auth.token", "DIARIZE_AUTH_TOKEN", TokenEnv); err != nil {
		return nil, err
	}

	if file == "" {
		file = guess()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Configuration("config.Load", "read %s: %v", file, err)
		}
	}
	return v, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Decode unmarshals v into a Root.
func Decode(v *viper.Viper) (*Root, error) {
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Configuration("config.Decode", "%v", err)
	}
	return &cfg, nil
}

// Load is NewViper followed by Decode.
func Load(file string) (*Root, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate checks the settings that can be checked without touching any
// service. A model-driven segmentation without a token is a configuration
// error.
func (r *Root) Validate() error {
	const op = "config.Validate"
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, errs.Configuration(op, format, args...))
	}

	if _, err := logrus.ParseLevel(r.Pipeline.LogLvl); err != nil {
		add("pipeline.log_level: %v", err)
	}
	if r.Audio.SampleRate <= 0 {
		add("audio.sample_rate must be positive, got %d", r.Audio.SampleRate)
	}
	if r.Clustering.NSpeakers < 1 {
		add("clustering.n_speakers must be at least 1, got %d", r.Clustering.NSpeakers)
	}

	switch r.Segmentation.Strategy {
	case "fixed":
		if r.Segmentation.ChunkLength <= 0 {
			add("segmentation.chunk_length must be positive, got %g", r.Segmentation.ChunkLength)
		}
	case "vad":
		if r.Auth.Token == "" {
			add("segmentation.strategy=vad requires an access token (%s)", TokenEnv)
		}
		if r.Services.VAD.URL == "" {
			add("segmentation.strategy=vad requires services.vad.url")
		}
	default:
		add("segmentation.strategy must be fixed or vad, got %q", r.Segmentation.Strategy)
	}

	if r.Embedding.Backend == "service" && r.Services.Embedding.URL == "" {
		add("embedding.backend=service requires services.embedding.url")
	}
	if r.Clustering.Backend == "service" && r.Services.Clustering.URL == "" {
		add("clustering.backend=service requires services.clustering.url")
	}
	return errors.Join(problems...)
}

// Redacted returns a copy safe to print.
func (r *Root) Redacted() *Root {
	c := *r
	if c.Auth.Token != "" {
		c.Auth.Token = "***"
	}
	return &c
}

// YAML renders the redacted configuration.
func (r *Root) YAML() ([]byte, error) {
	return yaml.Marshal(r.Redacted())
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
