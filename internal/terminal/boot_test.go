package terminal

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"attendterm/internal/display"
	"attendterm/internal/sensor"
)

func TestBoot(t *testing.T) {
	cases := []struct {
		name       string
		linked     bool
		online     bool
		wantSynced bool
		wantShown  []string
	}{
		{"all good", true, true, true, []string{"SENSOR OK", "SYNCING TIME..."}},
		{"no sensor", false, true, true, []string{"SENSOR ERROR"}},
		{"offline", true, false, false, []string{"OFFLINE MODE"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &display.Recorder{}
			sim := sensor.NewSimulated()
			sim.SetLinked(tc.linked)
			synced := false
			ok := Boot(context.Background(), display.NewPresenter(rec, "ATTENDANCE", 0), BootSteps{
				VerifyLink: sim.VerifyLink,
				Probe:      func(context.Context) bool { return tc.online },
				SyncClock: func() error {
					synced = true
					return errors.New("timeout")
				},
				Sleep: func(time.Duration) {},
			}, nil)

			if ok != tc.linked {
				t.Fatalf("sensor ok %v", ok)
			}
			if synced != tc.wantSynced {
				t.Fatalf("clock synced %v", synced)
			}
			for _, want := range tc.wantShown {
				if !slices.Contains(rec.Texts(), want) {
					t.Fatalf("missing %q in %v", want, rec.Texts())
				}
			}
		})
	}
}
