package clock

import (
	"errors"
	"testing"
	"time"
)

func TestRTCSync(t *testing.T) {
	host := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewRTC()
	c.base = func() time.Time { return host }

	if !c.Synced().IsZero() {
		t.Fatal("fresh clock reports a sync")
	}

	offset := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC).Sub(host)
	err := c.Sync(func(server string, timeout time.Duration) (time.Duration, error) {
		if server != "pool.ntp.org" || timeout != 3*time.Second {
			t.Errorf("query(%q, %s)", server, timeout)
		}
		return offset, nil
	}, "pool.ntp.org", 3*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Now(); !got.Equal(host.Add(offset)) {
		t.Fatalf("now %s", got)
	}
}

func TestRTCSyncFailureKeepsValue(t *testing.T) {
	host := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	c := NewRTC()
	c.base = func() time.Time { return host }
	c.Adjust(time.Hour)

	boom := errors.New("no route")
	err := c.Sync(func(string, time.Duration) (time.Duration, error) { return 0, boom }, "x", time.Second)
	if !errors.Is(err, boom) {
		t.Fatalf("err %v", err)
	}
	if got := c.Now(); !got.Equal(host.Add(time.Hour)) {
		t.Fatalf("clock moved on failed sync: %s", got)
	}
}
