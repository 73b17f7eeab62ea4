package attendance

import "time"

// DefaultDuplicateWindow is the cooldown applied when none is configured.
const DefaultDuplicateWindow = 60 * time.Second

// Outcome classifies a match against the recent-match record.
type Outcome int

const (
	OutcomeNew Outcome = iota
	OutcomeDuplicate
)

func (o Outcome) String() string {
	if o == OutcomeDuplicate {
		return "duplicate"
	}
	return "new"
}

// Deduper suppresses repeat scans of the same identity within a window.
// Only the most recent identity is remembered and nothing is persisted.
type Deduper struct {
	window time.Duration
	lastID int
	lastAt time.Time
	seen   bool
}

// NewDeduper creates a suppressor with the given cooldown window.
func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &Deduper{window: window}
}

// Check reports whether a match of id at now is new or a duplicate. A new
// outcome replaces the remembered (id, time) pair; a duplicate leaves it as is.
func (d *Deduper) Check(id int, now time.Time) Outcome {
	if d.seen && id == d.lastID && now.Sub(d.lastAt) < d.window {
		return OutcomeDuplicate
	}
	d.lastID = id
	d.lastAt = now
	d.seen = true
	return OutcomeNew
}

// Window returns the configured cooldown.
func (d *Deduper) Window() time.Duration { return d.window }
