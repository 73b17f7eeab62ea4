// Package clock is the terminal's wall-clock source, set once at boot from
// network time when connectivity allows.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// RTC is a system clock corrected by an offset learned from NTP. Without a
// successful sync it keeps reporting the host time.
type RTC struct {
	mu     sync.RWMutex
	offset time.Duration
	synced time.Time
	base   func() time.Time
}

func NewRTC() *RTC { return &RTC{base: time.Now} }

func (c *RTC) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base().Add(c.offset)
}

// Adjust sets the correction applied to the host clock.
func (c *RTC) Adjust(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = offset
	c.synced = c.base()
}

// Synced reports when the clock was last adjusted; zero if never.
func (c *RTC) Synced() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// QueryFunc fetches the offset between local time and a time server.
type QueryFunc func(server string, timeout time.Duration) (time.Duration, error)

// QueryNTP asks server for the clock offset and validates the reply.
func QueryNTP(server string, timeout time.Duration) (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, fmt.Errorf("ntp query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("ntp reply from %s: %w", server, err)
	}
	return resp.ClockOffset, nil
}

// Sync adjusts c from server using query. On failure the clock keeps its
// previous value.
func (c *RTC) Sync(query QueryFunc, server string, timeout time.Duration) error {
	offset, err := query(server, timeout)
	if err != nil {
		return err
	}
	c.Adjust(offset)
	return nil
}
