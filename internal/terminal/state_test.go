package terminal

import (
	"fmt"
	"testing"
	"time"

	"attendterm/internal/attendance"
	"attendterm/internal/input"
	"attendterm/internal/matcher"
)

var (
	up      = Input{Keys: input.Events{Up: true}}
	down    = Input{Keys: input.Events{Down: true}}
	confirm = Input{Keys: input.Events{Confirm: true}}
)

func newTestContext() *Context {
	return NewContext("1212", true, attendance.NewDeduper(time.Minute))
}

// enterPin drives the digit wheel to each digit and confirms it.
func enterPin(c *Context, pin string) Effect {
	var eff Effect
	for _, r := range pin {
		for c.State.Digit != int(r-'0') {
			Step(c, up)
		}
		eff = Step(c, confirm)
	}
	return eff
}

func TestPinEntryAllCodes(t *testing.T) {
	for code := 0; code < 10000; code++ {
		pin := fmt.Sprintf("%04d", code)
		c := newTestContext()
		Step(c, confirm)
		if c.State.Mode != InputPin {
			t.Fatalf("confirm in standby gave %s", c.State.Mode)
		}

		eff := enterPin(c, pin)

		if pin == "1212" {
			if c.State.Mode != Menu || eff.Kind != NoEffect {
				t.Fatalf("correct pin: mode %s effect %s", c.State.Mode, eff.Kind)
			}
			continue
		}
		if c.State.Mode != Standby || eff.Kind != PinRejected {
			t.Fatalf("pin %s: mode %s effect %s", pin, c.State.Mode, eff.Kind)
		}
	}
}

func TestPinWheelWraps(t *testing.T) {
	c := newTestContext()
	Step(c, confirm)
	Step(c, down)
	if c.State.Digit != 9 {
		t.Fatalf("down from 0 gave %d", c.State.Digit)
	}
	Step(c, up)
	if c.State.Digit != 0 {
		t.Fatalf("up from 9 gave %d", c.State.Digit)
	}
	Step(c, up)
	Step(c, confirm)
	if c.State.Entered != "1" || c.State.Digit != 0 {
		t.Fatalf("entered %q digit %d", c.State.Entered, c.State.Digit)
	}
}

func TestTransitionsResetTransientFields(t *testing.T) {
	c := newTestContext()
	Step(c, confirm)
	enterPin(c, "1212")
	Step(c, down)
	if c.State.MenuIndex != 1 {
		t.Fatalf("menu index %d", c.State.MenuIndex)
	}
	Step(c, confirm)
	if c.State.Mode != Delete || !c.State.FirstEntry || c.State.CandidateID != 1 || c.State.MenuIndex != 0 {
		t.Fatalf("state after entering delete: %+v", c.State)
	}
	if c.State.Entered != "" {
		t.Fatal("pin digits leaked into delete mode")
	}
}

func TestStandbyStatusSelector(t *testing.T) {
	c := newTestContext()
	Step(c, down)
	if c.Status != attendance.CheckOut {
		t.Fatalf("down gave %s", c.Status)
	}
	Step(c, up)
	Step(c, up)
	if c.Status != attendance.Overtime {
		t.Fatalf("up twice gave %s", c.Status)
	}

	// The selection survives a trip through the admin flow.
	Step(c, confirm)
	enterPin(c, "0000")
	if c.Status != attendance.Overtime {
		t.Fatalf("status reset to %s", c.Status)
	}
}

func TestMenuNavigation(t *testing.T) {
	c := newTestContext()
	Step(c, confirm)
	enterPin(c, "1212")

	Step(c, up)
	if c.State.MenuIndex != len(MenuItems)-1 {
		t.Fatalf("up from first item gave %d", c.State.MenuIndex)
	}
	Step(c, confirm)
	if c.State.Mode != Standby {
		t.Fatalf("back gave %s", c.State.Mode)
	}
}

func TestMenuWithoutSensorBounces(t *testing.T) {
	c := newTestContext()
	c.SensorOK = false
	Step(c, confirm)
	enterPin(c, "1212")

	eff := Step(c, confirm)
	if eff.Kind != NoSensor || c.State.Mode != Menu || !c.State.FirstEntry {
		t.Fatalf("effect %s mode %s", eff.Kind, c.State.Mode)
	}
}

func TestPickerBounds(t *testing.T) {
	c := newTestContext()
	Step(c, confirm)
	enterPin(c, "1212")
	Step(c, confirm)
	if c.State.Mode != Enroll {
		t.Fatalf("mode %s", c.State.Mode)
	}

	Step(c, down)
	if c.State.CandidateID != 1 {
		t.Fatalf("id went below 1: %d", c.State.CandidateID)
	}
	Step(c, up)
	Step(c, up)
	eff := Step(c, confirm)
	if eff.Kind != RunEnroll || eff.ID != 3 || c.State.Mode != Menu {
		t.Fatalf("effect %+v mode %s", eff, c.State.Mode)
	}
}

func TestDuplicateSuppression(t *testing.T) {
	c := newTestContext()
	t0 := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	match := func(id int, at time.Time) Effect {
		return Step(c, Input{Match: matcher.Result{Kind: matcher.Matched, ID: id}, Now: at})
	}

	if eff := match(7, t0); eff.Kind != RecordAttendance || eff.ID != 7 {
		t.Fatalf("first match %+v", eff)
	}
	if eff := match(7, t0.Add(59*time.Second)); eff.Kind != DuplicateScan {
		t.Fatalf("repeat inside window %+v", eff)
	}
	if eff := match(7, t0.Add(60*time.Second)); eff.Kind != RecordAttendance {
		t.Fatalf("repeat after window %+v", eff)
	}
	if eff := match(8, t0.Add(61*time.Second)); eff.Kind != RecordAttendance {
		t.Fatalf("other identity %+v", eff)
	}
	if eff := match(7, t0.Add(62*time.Second)); eff.Kind != RecordAttendance {
		t.Fatalf("only the last identity is suppressed, got %+v", eff)
	}
}

func TestStandbyRejectAndSync(t *testing.T) {
	c := newTestContext()
	if eff := Step(c, Input{Match: matcher.Result{Kind: matcher.Rejected}}); eff.Kind != UnknownFinger {
		t.Fatalf("rejected gave %s", eff.Kind)
	}
	eff := Step(c, Input{Keys: input.Events{LongUp: true}})
	if eff.Kind != SyncQueue || c.State.Mode != Standby {
		t.Fatalf("long press gave %s in %s", eff.Kind, c.State.Mode)
	}
}
