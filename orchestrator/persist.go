package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PersistBundle is the <name>.json written beside each report when output.json is set.
type PersistBundle struct {
	File          string    `json:"file"`
	GeneratedAt   time.Time `json:"generated_at"`
	AudioDuration float64   `json:"audio_duration_s"`
	Strategy      string    `json:"strategy"`
	NSpeakers     int       `json:"n_speakers"`
	Segments      []Segment `json:"segments"`
	Skipped       bool      `json:"skipped,omitempty"`
}

// outputName maps an input file name to its artefact name with ext.
func outputName(inputName, ext string) string {
	return strings.TrimSuffix(inputName, filepath.Ext(inputName)) + ext
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReportFile(path string, r *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteReport(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// persistJSON writes the structured result next to the text report.
func persistJSON(outDir, inputName string, r *Result) (string, error) {
	path := filepath.Join(outDir, outputName(inputName, ".json"))
	segs := r.Segments
	if segs == nil {
		segs = []Segment{}
	}
	bundle := PersistBundle{
		File:          inputName,
		GeneratedAt:   time.Now(),
		AudioDuration: r.AudioDuration,
		Strategy:      r.Strategy,
		NSpeakers:     r.NSpeakers,
		Segments:      segs,
		Skipped:       r.Skipped,
	}
	if err := writeJSON(path, bundle); err != nil {
		return "", err
	}
	return path, nil
}
