package segment

import (
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

const (
	StrategyFixed = "fixed"
	StrategyVAD   = "vad"
)

// Options selects and parameterises a segmentation strategy.
type Options struct {
	Strategy    string
	ChunkLength float64
	MinDuration float64
	VADURL      string
	Token       string
}

// New builds the Segmenter named by opts.Strategy.
func New(opts Options, detector SpeechDetector, log logrus.FieldLogger) (Segmenter, error) {
	switch opts.Strategy {
	case StrategyFixed, "":
		return NewFixedWindow(opts.ChunkLength)
	case StrategyVAD:
		return NewVAD(detector, opts.VADURL, opts.Token, opts.MinDuration, log)
	}
	return nil, errs.Configuration("segment.New", "unknown segmentation strategy %q", opts.Strategy)
}
