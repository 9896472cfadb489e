package playback

import (
	"sync"
	"testing"
	"time"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestClock(duration, rate float64) (*Clock, *fakeNow) {
	fn := &fakeNow{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewClock(duration, rate)
	c.now = fn.now
	return c, fn
}

func TestClock_PlayPause(t *testing.T) {
	c, now := newTestClock(0, 1)
	if c.Status() != Unstarted {
		t.Fatalf("expected unstarted, got %s", c.Status())
	}

	c.Play()
	now.advance(2 * time.Second)
	if got := c.CurrentTime(); got != 2 {
		t.Errorf("expected 2s, got %v", got)
	}

	c.Pause()
	now.advance(5 * time.Second)
	if got := c.CurrentTime(); got != 2 {
		t.Errorf("expected position frozen at 2s while paused, got %v", got)
	}
	if c.Status() != Paused {
		t.Errorf("expected paused, got %s", c.Status())
	}

	c.Play()
	now.advance(time.Second)
	if got := c.CurrentTime(); got != 3 {
		t.Errorf("expected 3s after resuming, got %v", got)
	}
}

func TestClock_RateAndSeek(t *testing.T) {
	c, now := newTestClock(100, 4)
	c.Play()
	now.advance(time.Second)
	if got := c.CurrentTime(); got != 4 {
		t.Errorf("expected 4s at rate 4, got %v", got)
	}

	c.Seek(50)
	now.advance(time.Second)
	if got := c.CurrentTime(); got != 54 {
		t.Errorf("expected 54s after seek, got %v", got)
	}

	c.Seek(-3)
	if got := c.CurrentTime(); got != 0 {
		t.Errorf("expected negative seek to clamp at 0, got %v", got)
	}
}

func TestClock_EndsAtDuration(t *testing.T) {
	c, now := newTestClock(10, 1)
	var mu sync.Mutex
	var seen []Status
	c.OnStateChange(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	c.Play()
	now.advance(15 * time.Second)

	if got := c.CurrentTime(); got != 10 {
		t.Errorf("expected position clamped at duration, got %v", got)
	}
	if c.Status() != Ended {
		t.Errorf("expected ended, got %s", c.Status())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != Playing || seen[1] != Ended {
		t.Errorf("expected playing then ended notifications, got %v", seen)
	}
}

func TestClock_PlayAfterEndRestarts(t *testing.T) {
	c, now := newTestClock(5, 1)
	c.Play()
	now.advance(6 * time.Second)
	if c.Status() != Ended {
		t.Fatalf("expected ended, got %s", c.Status())
	}

	c.Play()
	now.advance(time.Second)
	if got := c.CurrentTime(); got != 1 {
		t.Errorf("expected replay from start, got %v", got)
	}
}

func TestClock_SeekAfterEndKept(t *testing.T) {
	c, now := newTestClock(5, 1)
	c.Play()
	now.advance(6 * time.Second)
	if c.Status() != Ended {
		t.Fatalf("expected ended, got %s", c.Status())
	}

	c.Seek(2)
	c.Play()
	now.advance(time.Second)
	if got := c.CurrentTime(); got != 3 {
		t.Errorf("expected playback to resume from the seek position, got %v", got)
	}
}

func TestClock_SetDuration(t *testing.T) {
	c, now := newTestClock(0, 2)
	c.Play()
	now.advance(3 * time.Second)

	c.SetDuration(10)
	if got := c.CurrentTime(); got != 6 {
		t.Errorf("expected position kept when the duration arrives, got %v", got)
	}
	now.advance(3 * time.Second)
	if c.Status() != Ended {
		t.Errorf("expected ended once past the new duration, got %s", c.Status())
	}
	if got := c.CurrentTime(); got != 10 {
		t.Errorf("expected position clamped at 10, got %v", got)
	}

	c.SetDuration(4)
	if got := c.CurrentTime(); got != 4 {
		t.Errorf("expected a shorter duration to clamp the position, got %v", got)
	}
}

func TestClock_DrivesController(t *testing.T) {
	c, now := newTestClock(0, 1)
	display := &recordingDisplay{}
	ctrl := New(c, loadedTrack(), display, time.Millisecond)
	c.OnStateChange(ctrl.StateChange)

	c.Play()
	now.advance(time.Second)
	ctrl.poll()
	c.Pause()
	ctrl.poll()

	if ctrl.lastState() != Paused {
		t.Errorf("expected controller to observe pause, got %s", ctrl.lastState())
	}
	if n := len(display.snapshot()); n != 1 {
		t.Errorf("expected one display update while playing, got %d", n)
	}
}
