package attendance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the wire and queue format: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ErrMalformedLine is returned when a queued line cannot be decoded.
var ErrMalformedLine = errors.New("malformed queue line")

// Status is the attendance tag chosen on the standby selector.
type Status int

const (
	CheckIn Status = iota
	CheckOut
	Overtime
)

var statusLabels = [...]string{"Check-In", "Check-Out", "Overtime"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusLabels) {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusLabels[s]
}

// Next cycles forward through the selector.
func (s Status) Next() Status { return (s + 1) % Status(len(statusLabels)) }

// Prev cycles backward through the selector.
func (s Status) Prev() Status {
	n := Status(len(statusLabels))
	return (s + n - 1) % n
}

// ParseStatus maps a label back to its Status.
func ParseStatus(label string) (Status, error) {
	for i, l := range statusLabels {
		if strings.EqualFold(l, label) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status label %q", label)
}

// Record is one attendance event. It is never modified after NewRecord.
type Record struct {
	IdentityID int
	Status     Status
	Timestamp  time.Time
}

// NewRecord builds a record stamped at the given wall-clock instant,
// truncated to the millisecond precision of the wire format.
func NewRecord(identityID int, status Status, at time.Time) (Record, error) {
	if identityID <= 0 {
		return Record{}, fmt.Errorf("identity id must be positive, got %d", identityID)
	}
	return Record{
		IdentityID: identityID,
		Status:     status,
		Timestamp:  at.UTC().Truncate(time.Millisecond),
	}, nil
}

// FormatTimestamp renders the record time as sent to the ingestion endpoint.
func (r Record) FormatTimestamp() string {
	return r.Timestamp.UTC().Format(TimestampLayout)
}

// Line encodes the record as `uid,timestamp,status`.
func (r Record) Line() string {
	return strconv.Itoa(r.IdentityID) + "," + r.FormatTimestamp() + "," + r.Status.String()
}

// ParseLine decodes a line produced by Record.Line.
func ParseLine(line string) (Record, error) {
	uid, ts, label, err := splitLine(line)
	if err != nil {
		return Record{}, err
	}
	at, err := time.Parse(TimestampLayout, ts)
	if err != nil {
		return Record{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedLine, ts, err)
	}
	status, err := ParseStatus(label)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return NewRecord(uid, status, at)
}

// SplitLine extracts the fields a sync pass transmits. The status label is
// informational and not validated, so lines written with older label sets
// still sync.
func SplitLine(line string) (uid int, timestamp string, err error) {
	uid, timestamp, _, err = splitLine(line)
	return uid, timestamp, err
}

func splitLine(line string) (int, string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(line), ",", 3)
	if len(parts) != 3 || parts[1] == "" {
		return 0, "", "", fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	uid, err := strconv.Atoi(parts[0])
	if err != nil || uid <= 0 {
		return 0, "", "", fmt.Errorf("%w: uid %q", ErrMalformedLine, parts[0])
	}
	return uid, parts[1], parts[2], nil
}
