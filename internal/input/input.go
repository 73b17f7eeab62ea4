// Package input turns raw control levels into debounced press events.
//
// The debounce is a blocking delay inside Poll, and long-press detection
// busy-waits on the level. Both stall the whole controller for their
// duration; callers rely on that rather than on timestamps.
package input

import "time"

// Button identifies one of the three momentary controls.
type Button int

const (
	Up Button = iota
	Down
	Confirm
)

var buttons = [...]Button{Up, Down, Confirm}

func (b Button) String() string {
	switch b {
	case Up:
		return "up"
	case Down:
		return "down"
	case Confirm:
		return "confirm"
	}
	return "unknown"
}

// Pins reports whether a control is currently held down. Implementations
// translate active-low electrical levels.
type Pins interface {
	Pressed(b Button) bool
}

// Events is what one Poll observed.
type Events struct {
	Up      bool
	Down    bool
	Confirm bool
	// LongUp is set instead of Up when up was held for the long-press time.
	LongUp bool
	// Activity is set when any control was down, pressed edge or not.
	Activity bool
}

// Any reports whether a press event occurred.
func (e Events) Any() bool { return e.Up || e.Down || e.Confirm || e.LongUp }

// Config holds the input timing.
type Config struct {
	Debounce  time.Duration
	LongPress time.Duration
	// HoldPoll is the sampling period while measuring a hold.
	HoldPoll time.Duration
}

// Source produces edge-triggered events from Pins.
type Source struct {
	pins  Pins
	cfg   Config
	prev  [len(buttons)]bool
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSource creates a source, defaulting zero timings to 200ms debounce,
// 3s long press and 10ms hold sampling.
func NewSource(pins Pins, cfg Config) *Source {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = 3 * time.Second
	}
	if cfg.HoldPoll <= 0 {
		cfg.HoldPoll = 10 * time.Millisecond
	}
	return &Source{pins: pins, cfg: cfg, now: time.Now, sleep: time.Sleep}
}

// Poll samples every control once. A released-to-pressed transition is one
// press, followed by the debounce delay. With longPress set, an up press is
// held-measured first: reaching the long-press time yields LongUp (the wait
// ends there, not at release), releasing earlier yields a plain Up.
func (s *Source) Poll(longPress bool) Events {
	var ev Events
	for _, b := range buttons {
		level := s.pins.Pressed(b)
		if level {
			ev.Activity = true
		}
		edge := level && !s.prev[b]
		s.prev[b] = level
		if !edge {
			continue
		}

		switch b {
		case Up:
			if longPress && s.holdUp() {
				ev.LongUp = true
				continue
			}
			if longPress {
				s.prev[Up] = false
			}
			ev.Up = true
		case Down:
			ev.Down = true
		case Confirm:
			ev.Confirm = true
		}
		s.sleep(s.cfg.Debounce)
	}
	return ev
}

// holdUp busy-waits while up stays pressed, up to the long-press time.
func (s *Source) holdUp() bool {
	start := s.now()
	for s.pins.Pressed(Up) {
		if s.now().Sub(start) >= s.cfg.LongPress {
			return true
		}
		s.sleep(s.cfg.HoldPoll)
	}
	return false
}

// Idle is a Pins that never reports a press, for headless runs.
type Idle struct{}

func (Idle) Pressed(Button) bool { return false }
