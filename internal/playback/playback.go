// Package playback drives transcript display from a video player's position.
package playback

import "strconv"

// Status uses the numeric codes of the embeddable YouTube player.
type Status int

const (
	Unstarted Status = -1
	Ended     Status = 0
	Playing   Status = 1
	Paused    Status = 2
	Buffering Status = 3
	Cued      Status = 5
)

func (s Status) Known() bool {
	switch s {
	case Unstarted, Ended, Playing, Paused, Buffering, Cued:
		return true
	}
	return false
}

func (s Status) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Ended:
		return "ended"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Cued:
		return "cued"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// Widget is the player being followed.
type Widget interface {
	CurrentTime() float64
	Status() Status
}

// Display shows the current transcript line. An empty string clears it.
type Display interface {
	SetText(text string)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(text string)

func (f DisplayFunc) SetText(text string) { f(text) }
