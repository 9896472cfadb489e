package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lightgray/lightgray/internal/transcript"
)

const DefaultInterval = 500 * time.Millisecond

// Controller belongs to one view. Mount opens its scope, the player's ready event
// starts polling, and Unmount stops the poll and waits for it to exit.
type Controller struct {
	widget   Widget
	track    *transcript.Track
	display  Display
	interval time.Duration

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	polling   bool
	unmounted bool
	status    Status
	ended     chan struct{}
	endOnce   sync.Once
}

func New(widget Widget, track *transcript.Track, display Display, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		widget:   widget,
		track:    track,
		display:  display,
		interval: interval,
		status:   Unstarted,
		ended:    make(chan struct{}),
	}
}

// Mount binds the controller to the lifetime of its view.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx != nil || c.unmounted {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
}

// Ready handles the player's ready event by starting the poll. Repeated ready events
// and events outside the mounted lifetime are ignored.
func (c *Controller) Ready() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil || c.unmounted {
		slog.Debug("playback: ready outside mounted view ignored")
		return
	}
	if c.polling {
		return
	}
	c.polling = true
	c.wg.Add(1)
	go c.run(c.ctx)
}

// StateChange handles a player state notification. Unknown codes are passed over.
// The first Ended notification closes the channel returned by Ended.
func (c *Controller) StateChange(s Status) {
	if !s.Known() {
		slog.Debug("playback: ignoring unknown player state", "state", int(s))
		return
	}
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	prev := c.status
	c.status = s
	c.mu.Unlock()

	if prev != s {
		slog.Debug("playback: player state changed", "from", prev.String(), "to", s.String())
	}
	if s == Ended {
		c.endOnce.Do(func() { close(c.ended) })
	}
}

// Ended is closed once the player reports the end of the video.
func (c *Controller) Ended() <-chan struct{} {
	return c.ended
}

// Unmount cancels the poll and returns once its goroutine has exited.
func (c *Controller) Unmount() {
	c.mu.Lock()
	c.unmounted = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll()
		}
	}
}

// poll performs one tick. The player position is only read while it is playing, so
// a paused, buffering or finished player leaves the displayed line untouched.
func (c *Controller) poll() {
	if c.widget.Status() != Playing {
		return
	}
	t := c.widget.CurrentTime()
	c.display.SetText(transcript.Text(t, c.track.Segments()))
}
