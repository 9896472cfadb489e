package transcript

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Track holds the segments of the video being watched. It is written once, when the
// fetch completes, and read by every poll. Reads before that see no segments.
type Track struct {
	segments atomic.Pointer[[]Segment]
}

func (t *Track) Segments() []Segment {
	if p := t.segments.Load(); p != nil {
		return *p
	}
	return nil
}

func (t *Track) Store(segments []Segment) {
	t.segments.Store(&segments)
}

// Load fetches ref in the background. The result is dropped if ctx, the lifetime of
// the view that owns the track, has ended by the time the fetch completes.
// The returned channel is closed once the fetch has finished either way.
func (t *Track) Load(ctx context.Context, f *Fetcher, ref string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		segments := f.Fetch(context.WithoutCancel(ctx), ref)
		if ctx.Err() != nil {
			slog.Debug("transcript: view closed before fetch completed", "ref", ref)
			return
		}
		t.Store(segments)
	}()
	return done
}
