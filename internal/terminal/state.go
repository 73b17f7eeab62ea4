// Package terminal is the attendance terminal controller: a single-threaded
// state machine over five UI modes driven by key events and sensor results.
package terminal

import (
	"time"

	"attendterm/internal/attendance"
	"attendterm/internal/input"
	"attendterm/internal/matcher"
)

// Mode is the active UI variant.
type Mode int

const (
	Standby Mode = iota
	InputPin
	Menu
	Enroll
	Delete
)

func (m Mode) String() string {
	switch m {
	case Standby:
		return "standby"
	case InputPin:
		return "input_pin"
	case Menu:
		return "menu"
	case Enroll:
		return "enroll"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// PinLength is the number of digits in the admin PIN.
const PinLength = 4

// MenuItems are the admin menu entries in display order.
var MenuItems = []string{"Enroll Finger", "Delete Finger", "Back"}

const (
	menuEnroll = iota
	menuDelete
	menuBack
)

// State is the active mode plus its transient fields. Only the fields of the
// current mode are meaningful.
type State struct {
	Mode Mode
	// FirstEntry is set by every transition and cleared once the mode has
	// been fully painted.
	FirstEntry bool

	Entered string // InputPin digits so far
	Digit   int    // InputPin wheel

	MenuIndex int

	CandidateID int // Enroll, Delete
}

// enter switches to m and resets every transient field.
func (s *State) enter(m Mode) {
	*s = State{Mode: m, FirstEntry: true, CandidateID: 1}
}

// Context is the controller's mutable state. It is owned by one goroutine.
type Context struct {
	State State
	// Status is the attendance status selected in standby; it persists
	// across mode changes.
	Status   attendance.Status
	SensorOK bool
	AdminPIN string
	Dedup    *attendance.Deduper
}

// NewContext returns a context resting in Standby.
func NewContext(adminPIN string, sensorOK bool, dedup *attendance.Deduper) *Context {
	c := &Context{AdminPIN: adminPIN, SensorOK: sensorOK, Dedup: dedup}
	c.State.enter(Standby)
	return c
}

// Input is what one tick observed.
type Input struct {
	Keys  input.Events
	Match matcher.Result
	Now   time.Time
}

// EffectKind names a side effect requested by Step.
type EffectKind int

const (
	NoEffect EffectKind = iota
	// RecordAttendance: a new match; transmit or queue a record for ID.
	RecordAttendance
	// DuplicateScan: ID matched again inside the cooldown window.
	DuplicateScan
	// UnknownFinger: the sensor found no matching template.
	UnknownFinger
	// SyncQueue: drain the offline queue.
	SyncQueue
	PinRejected
	RunEnroll
	RunDelete
	// NoSensor: a fingerprint flow was selected without a working sensor.
	NoSensor
)

func (k EffectKind) String() string {
	switch k {
	case RecordAttendance:
		return "record"
	case DuplicateScan:
		return "duplicate"
	case UnknownFinger:
		return "unknown_finger"
	case SyncQueue:
		return "sync"
	case PinRejected:
		return "pin_rejected"
	case RunEnroll:
		return "enroll"
	case RunDelete:
		return "delete"
	case NoSensor:
		return "no_sensor"
	}
	return "none"
}

// Effect is the side effect the controller must carry out after Step.
type Effect struct {
	Kind EffectKind
	ID   int
}

// Step applies one tick of input to c and returns the side effect to run.
// It never blocks and performs no I/O.
func Step(c *Context, in Input) Effect {
	switch c.State.Mode {
	case Standby:
		return stepStandby(c, in)
	case InputPin:
		return stepPin(c, in.Keys)
	case Menu:
		return stepMenu(c, in.Keys)
	case Enroll, Delete:
		return stepPicker(c, in.Keys)
	}
	c.State.enter(Standby)
	return Effect{}
}

func stepStandby(c *Context, in Input) Effect {
	// A sensor result is handled before keys so a match is never dropped.
	switch in.Match.Kind {
	case matcher.Matched:
		id := in.Match.ID
		if c.Dedup.Check(id, in.Now) == attendance.OutcomeDuplicate {
			return Effect{Kind: DuplicateScan, ID: id}
		}
		return Effect{Kind: RecordAttendance, ID: id}
	case matcher.Rejected:
		return Effect{Kind: UnknownFinger}
	}

	k := in.Keys
	switch {
	case k.LongUp:
		return Effect{Kind: SyncQueue}
	case k.Confirm:
		c.State.enter(InputPin)
		return Effect{}
	}
	if k.Up {
		c.Status = c.Status.Prev()
	}
	if k.Down {
		c.Status = c.Status.Next()
	}
	return Effect{}
}

func stepPin(c *Context, k input.Events) Effect {
	s := &c.State
	if k.Up {
		s.Digit = (s.Digit + 1) % 10
	}
	if k.Down {
		s.Digit = (s.Digit + 9) % 10
	}
	if !k.Confirm {
		return Effect{}
	}

	s.Entered += string(rune('0' + s.Digit))
	s.Digit = 0
	if len(s.Entered) < PinLength {
		return Effect{}
	}
	if s.Entered == c.AdminPIN {
		s.enter(Menu)
		return Effect{}
	}
	s.enter(Standby)
	return Effect{Kind: PinRejected}
}

func stepMenu(c *Context, k input.Events) Effect {
	s := &c.State
	n := len(MenuItems)
	if k.Up {
		s.MenuIndex = (s.MenuIndex + n - 1) % n
	}
	if k.Down {
		s.MenuIndex = (s.MenuIndex + 1) % n
	}
	if !k.Confirm {
		return Effect{}
	}

	switch s.MenuIndex {
	case menuEnroll, menuDelete:
		if !c.SensorOK {
			s.enter(Menu)
			return Effect{Kind: NoSensor}
		}
		if s.MenuIndex == menuEnroll {
			s.enter(Enroll)
		} else {
			s.enter(Delete)
		}
	case menuBack:
		s.enter(Standby)
	}
	return Effect{}
}

func stepPicker(c *Context, k input.Events) Effect {
	s := &c.State
	if k.Up {
		s.CandidateID++
	}
	if k.Down && s.CandidateID > 1 {
		s.CandidateID--
	}
	if !k.Confirm {
		return Effect{}
	}

	kind := RunEnroll
	if s.Mode == Delete {
		kind = RunDelete
	}
	id := s.CandidateID
	s.enter(Menu)
	return Effect{Kind: kind, ID: id}
}
