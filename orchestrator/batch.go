package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const MetricsFile = "metrics.csv"

type Runner interface {
	Run(ctx context.Context, wavPath string) (*Result, error)
}

// Batch applies a Runner to every WAV file of a folder.
type Batch struct {
	runner    Runner
	numFiles  int
	writeJSON bool
	log       logrus.FieldLogger
}

type BatchOption func(*Batch)

// WithNumFiles caps the batch to the first n files by name. n <= 0 means all.
func WithNumFiles(n int) BatchOption { return func(b *Batch) { b.numFiles = n } }

func WithJSON(on bool) BatchOption { return func(b *Batch) { b.writeJSON = on } }

func NewBatch(r Runner, log logrus.FieldLogger, opts ...BatchOption) *Batch {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &Batch{runner: r, log: log}
	for _, o := range opts {
		o(b)
	}
	return b
}

type Summary struct {
	Files    int
	Segments int
	Elapsed  time.Duration
	Metrics  string
}

// ListWAV returns the .wav files in dir sorted by name, capped to limit
// when limit > 0.
func ListWAV(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		names = append(names, e.Name())
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Run processes the folder. The first failing file aborts the batch;
// metrics rows written for earlier files stay on disk.
func (b *Batch) Run(ctx context.Context, inDir, outDir string) (*Summary, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	names, err := ListWAV(inDir, b.numFiles)
	if err != nil {
		return nil, err
	}

	metricsPath := filepath.Join(outDir, MetricsFile)
	f, err := os.Create(metricsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mw, err := NewMetricsWriter(f)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", metricsPath, err)
	}

	sum := &Summary{Metrics: metricsPath}
	total := time.Now()
	for _, name := range names {
		log := b.log.WithField("file", name)
		log.Info("processing")
		start := time.Now()

		res, err := b.runner.Run(ctx, filepath.Join(inDir, name))
		if err != nil {
			sum.Elapsed = time.Since(total)
			return sum, fmt.Errorf("%s: %w", name, err)
		}

		if err := writeReportFile(filepath.Join(outDir, outputName(name, ".txt")), res); err != nil {
			return sum, fmt.Errorf("%s: write report: %w", name, err)
		}
		if b.writeJSON {
			if _, err := persistJSON(outDir, name, res); err != nil {
				return sum, fmt.Errorf("%s: write json: %w", name, err)
			}
		}

		m := MetricsFor(name, time.Since(start), res)
		if err := mw.Write(m); err != nil {
			return sum, fmt.Errorf("%s: write metrics: %w", name, err)
		}
		sum.Files++
		sum.Segments += m.NumSegments

		log.WithFields(logrus.Fields{
			"elapsed":  fmt.Sprintf("%.2fs", m.TimeTaken.Seconds()),
			"segments": m.NumSegments,
			"audio":    fmt.Sprintf("%.2fs", m.AudioDuration),
		}).Info("finished")
	}

	sum.Elapsed = time.Since(total)
	b.log.WithFields(logrus.Fields{
		"files":   sum.Files,
		"elapsed": fmt.Sprintf("%.2fs", sum.Elapsed.Seconds()),
	}).Info("total processing time")
	return sum, nil
}
