package playback

import (
	"sync"
	"time"
)

// Clock is an in-process player with no picture: its position advances with wall
// time while playing. Duration, when positive, ends playback at that position.
type Clock struct {
	mu        sync.Mutex
	now       func() time.Time
	status    Status
	base      float64
	startedAt time.Time
	rate      float64
	duration  float64
	listeners []func(Status)
}

func NewClock(duration float64, rate float64) *Clock {
	if rate <= 0 {
		rate = 1
	}
	return &Clock{now: time.Now, status: Unstarted, rate: rate, duration: duration}
}

// OnStateChange registers fn to be called after every status transition.
func (c *Clock) OnStateChange(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Clock) Play() {
	c.transition(func() Status {
		if c.status == Playing {
			return Playing
		}
		// Replaying from the end starts over; a seek made after the end is kept.
		if c.status == Ended && c.duration > 0 && c.base >= c.duration {
			c.base = 0
		}
		c.startedAt = c.now()
		return Playing
	})
}

func (c *Clock) Pause() {
	c.transition(func() Status {
		if c.status != Playing {
			return c.status
		}
		c.base = c.positionLocked()
		return Paused
	})
}

// Seek moves the position. Seeking while playing keeps playing.
func (c *Clock) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	c.mu.Lock()
	if c.duration > 0 && t > c.duration {
		t = c.duration
	}
	c.base = t
	c.startedAt = c.now()
	c.mu.Unlock()
}

// SetDuration sets where playback ends, for players whose length is learned late.
// Zero or less means no end.
func (c *Clock) SetDuration(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Playing {
		c.base = c.positionLocked()
		c.startedAt = c.now()
	}
	c.duration = max(d, 0)
	if c.duration > 0 && c.base > c.duration {
		c.base = c.duration
	}
}

func (c *Clock) CurrentTime() float64 {
	c.Status() // settles a pending end of playback
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Clock) Status() Status {
	return c.transition(func() Status {
		if c.status == Playing && c.duration > 0 && c.positionLocked() >= c.duration {
			c.base = c.duration
			return Ended
		}
		return c.status
	})
}

func (c *Clock) positionLocked() float64 {
	pos := c.base
	if c.status == Playing {
		pos += c.now().Sub(c.startedAt).Seconds() * c.rate
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	return pos
}

// transition applies step under the lock and notifies listeners outside it.
func (c *Clock) transition(step func() Status) Status {
	c.mu.Lock()
	prev := c.status
	next := step()
	c.status = next
	var listeners []func(Status)
	if next != prev {
		listeners = append(listeners, c.listeners...)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}
