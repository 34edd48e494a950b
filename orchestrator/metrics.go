package orchestrator

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// MetricsHeader is the column order of metrics.csv.
var MetricsHeader = []string{"filename", "time_taken_s", "num_segments", "audio_duration_s", "avg_segment_duration_s"}

// Metrics is one row of metrics.csv.
type Metrics struct {
	Filename           string
	TimeTaken          time.Duration
	NumSegments        int
	AudioDuration      float64
	AvgSegmentDuration float64
}

func MetricsFor(filename string, elapsed time.Duration, r *Result) Metrics {
	m := Metrics{
		Filename:      filename,
		TimeTaken:     elapsed,
		NumSegments:   len(r.Segments),
		AudioDuration: r.AudioDuration,
	}
	if m.NumSegments > 0 {
		m.AvgSegmentDuration = r.SpeechDuration() / float64(m.NumSegments)
	}
	return m
}

func (m Metrics) record() []string {
	return []string{
		m.Filename,
		strconv.FormatFloat(m.TimeTaken.Seconds(), 'f', 2, 64),
		strconv.Itoa(m.NumSegments),
		strconv.FormatFloat(m.AudioDuration, 'f', 2, 64),
		strconv.FormatFloat(m.AvgSegmentDuration, 'f', 2, 64),
	}
}

// MetricsWriter appends rows to a CSV stream, flushing after each row so
// that an aborted batch keeps the rows already written.
type MetricsWriter struct {
	w *csv.Writer
}

// NewMetricsWriter writes the header and returns the writer.
func NewMetricsWriter(w io.Writer) (*MetricsWriter, error) {
	mw := &MetricsWriter{w: csv.NewWriter(w)}
	if err := mw.writeRecord(MetricsHeader); err != nil {
		return nil, err
	}
	return mw, nil
}

// Write appends and flushes one row.
func (mw *MetricsWriter) Write(m Metrics) error {
	return mw.writeRecord(m.record())
}

func (mw *MetricsWriter) writeRecord(rec []string) error {
	if err := mw.w.Write(rec); err != nil {
		return err
	}
	mw.w.Flush()
	return mw.w.Error()
}
