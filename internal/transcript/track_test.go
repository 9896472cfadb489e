package transcript

import (
	"context"
	"testing"
	"time"
)

// loaded reports whether Store has run, failed fetches included.
func (t *Track) loaded() bool {
	return t.segments.Load() != nil
}

func TestTrack_NotLoadedIsEmpty(t *testing.T) {
	var track Track

	if track.loaded() {
		t.Error("expected new track not to be loaded")
	}
	if got := track.Segments(); got != nil {
		t.Errorf("expected nil segments, got %+v", got)
	}
	if text := Text(3, track.Segments()); text != "" {
		t.Errorf("expected no text before load, got %q", text)
	}
}

func TestTrack_Store(t *testing.T) {
	var track Track
	track.Store([]Segment{{0, 1, "a"}})

	if !track.loaded() {
		t.Error("expected track to be loaded")
	}
	if got := track.Segments(); len(got) != 1 || got[0].Text != "a" {
		t.Errorf("unexpected segments %+v", got)
	}
}

func TestTrack_StoreEmptyMarksLoaded(t *testing.T) {
	var track Track
	track.Store(nil)

	if !track.loaded() {
		t.Error("expected a failed fetch to still mark the track as loaded")
	}
	if len(track.Segments()) != 0 {
		t.Error("expected no segments")
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestTrack_Load(t *testing.T) {
	src := &fakeSource{files: map[string]string{"t.json": `[{"start":0,"end":1,"text":"uno"}]`}}
	var track Track

	waitDone(t, track.Load(context.Background(), NewFetcher(src, time.Second), "t.json"))

	if got := track.Segments(); len(got) != 1 || got[0].Text != "uno" {
		t.Errorf("unexpected segments %+v", got)
	}
}

func TestTrack_LoadAfterViewClosedIsDropped(t *testing.T) {
	src := &fakeSource{
		files: map[string]string{"t.json": `[{"start":0,"end":1,"text":"uno"}]`},
		delay: 50 * time.Millisecond,
	}
	var track Track
	ctx, cancel := context.WithCancel(context.Background())

	done := track.Load(ctx, NewFetcher(src, time.Second), "t.json")
	cancel()
	waitDone(t, done)

	if track.loaded() {
		t.Error("expected completion after teardown not to update the track")
	}
	if src.opens.Load() != 1 {
		t.Errorf("expected the fetch to run once, got %d", src.opens.Load())
	}
}
