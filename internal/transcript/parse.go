package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var errUnrecognizedFormat = errors.New("unrecognized transcript format")

var validate = validator.New()

// Parse decodes a transcript resource. JSON arrays of {start,end,text} records and
// WebVTT/SRT cue files are accepted; the format is sniffed from the content.
// Invalid segments are dropped with a warning and the rest keep their order.
func Parse(data []byte) ([]Segment, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		return parseJSON(trimmed)
	}
	if bytes.Contains(trimmed, []byte("-->")) {
		return parseCues(string(trimmed)), nil
	}
	return nil, errUnrecognizedFormat
}

func parseJSON(data []byte) ([]Segment, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	segments := make([]Segment, 0, len(raw))
	for i, entry := range raw {
		var s Segment
		if err := json.Unmarshal(entry, &s); err != nil {
			slog.Warn("transcript: skipping undecodable segment", "index", i, "error", err)
			continue
		}
		s.Text = strings.TrimSpace(s.Text)
		if err := check(s); err != nil {
			slog.Warn("transcript: skipping invalid segment", "index", i, "error", err)
			continue
		}
		segments = append(segments, s)
	}
	return segments, nil
}

func check(s Segment) error {
	if math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) || math.IsNaN(s.Start) || math.IsNaN(s.End) {
		return errors.New("non-finite segment bounds")
	}
	return validate.Struct(s)
}

// parseCues reads WebVTT and SRT bodies. Cue identifiers, SRT sequence numbers,
// NOTE/STYLE blocks and cue settings are ignored; multi-line cue text is joined.
func parseCues(body string) []Segment {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var segments []Segment
	for i, block := range strings.Split(body, "\n\n") {
		lines := nonEmptyLines(block)
		timing := -1
		for j, line := range lines {
			if strings.Contains(line, "-->") {
				timing = j
				break
			}
		}
		if timing < 0 {
			continue
		}
		start, end, ok := parseTiming(lines[timing])
		if !ok {
			slog.Warn("transcript: skipping cue with bad timing", "block", i, "timing", lines[timing])
			continue
		}
		s := Segment{Start: start, End: end, Text: strings.Join(lines[timing+1:], " ")}
		if err := check(s); err != nil {
			slog.Warn("transcript: skipping invalid cue", "block", i, "error", err)
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseTiming(line string) (start, end float64, ok bool) {
	from, to, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, false
	}
	// Cue settings such as "align:start" follow the end timestamp.
	if fields := strings.Fields(to); len(fields) > 0 {
		to = fields[0]
	}
	start, okStart := parseTimestamp(strings.TrimSpace(from))
	end, okEnd := parseTimestamp(strings.TrimSpace(to))
	return start, end, okStart && okEnd
}

// parseTimestamp accepts HH:MM:SS.mmm, HH:MM:SS,mmm and MM:SS.mmm.
func parseTimestamp(ts string) (float64, bool) {
	if ts == "" {
		return 0, false
	}
	parts := strings.Split(strings.Replace(ts, ",", ".", 1), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}
