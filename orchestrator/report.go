package orchestrator

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	ReportHeader      = "Diarization results:"
	NotEnoughSegments = "Not enough segments for clustering."
)

// FormatLine renders a segment with a 1-based speaker number.
func FormatLine(s Segment) string {
	return fmt.Sprintf("Speaker %d: %.2fs - %.2fs", s.Label+1, s.Start, s.End)
}

func WriteReport(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)
	if r.Skipped {
		fmt.Fprintln(bw, NotEnoughSegments)
		return bw.Flush()
	}
	fmt.Fprintln(bw, ReportHeader)
	for _, s := range r.Segments {
		fmt.Fprintln(bw, FormatLine(s))
	}
	return bw.Flush()
}

type ReportStats struct {
	Segments int
	Duration float64
}

// Average returns the mean segment duration, 0 when there are none.
func (s ReportStats) Average() float64 {
	if s.Segments == 0 {
		return 0
	}
	return s.Duration / float64(s.Segments)
}

var reportLine = regexp.MustCompile(`^Speaker\s+\d+:\s*([0-9]+(?:\.[0-9]+)?)s\s*-\s*([0-9]+(?:\.[0-9]+)?)s\s*$`)

// ParseReport counts speaker lines in a report and sums their durations.
// Lines that do not have the "Speaker N: X.XXs - Y.YYs" shape are skipped.
func ParseReport(r io.Reader) (ReportStats, error) {
	var st ReportStats
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			st.add(raw)
		}
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, err
		}
	}
}

func (s *ReportStats) add(raw string) {
	line := strings.TrimSpace(raw)
	if !strings.HasPrefix(line, "Speaker") {
		return
	}
	m := reportLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	start, err1 := strconv.ParseFloat(m[1], 64)
	end, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return
	}
	s.Segments++
	s.Duration += end - start
}
