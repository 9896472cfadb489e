// Package transcript loads timed transcript segments and matches them against a
// playback position.
package transcript

import "math"

// Segment is one timed line. Text may be empty: a blank segment still claims its
// window and clears the display there.
type Segment struct {
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtefield=Start"`
	Text  string  `json:"text"`
}

// Synchronize returns the first segment whose window [Start, End] contains t.
// A position in a gap between segments matches nothing. Overlapping windows resolve
// to the earliest segment in sequence order. t must be finite and non-negative.
func Synchronize(t float64, segments []Segment) (Segment, bool) {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return Segment{}, false
	}
	for _, s := range segments {
		if s.Start <= t && t <= s.End {
			return s, true
		}
	}
	return Segment{}, false
}

// Text is Synchronize reduced to the display string: the segment text or "".
func Text(t float64, segments []Segment) string {
	s, ok := Synchronize(t, segments)
	if !ok {
		return ""
	}
	return s.Text
}
