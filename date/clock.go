package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockFormat is the format used to read and write a time of day.
const ClockFormat = "15:04:05"

// Clock is a time of day with second granularity.
// The zero value is midnight.
type Clock struct {
	secs int // seconds since midnight
}

// NewClock returns the Clock for the given hour, minute and second.
// Out of range values are wrapped around the day.
func NewClock(hour, min, sec int) Clock {
	s := (hour*3600 + min*60 + sec) % 86400
	if s < 0 {
		s += 86400
	}
	return Clock{secs: s}
}

func (c Clock) Hour() int   { return c.secs / 3600 }
func (c Clock) Minute() int { return c.secs % 3600 / 60 }
func (c Clock) Second() int { return c.secs % 60 }

// Before reports whether c is earlier in the day than x.
func (c Clock) Before(x Clock) bool { return c.secs < x.secs }

// Compare returns -1, 0 or +1 depending on whether c is before, equal to or after x.
func (c Clock) Compare(x Clock) int {
	switch {
	case c.secs < x.secs:
		return -1
	case c.secs > x.secs:
		return 1
	default:
		return 0
	}
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// ParseClock parses a time of day. It accepts "15:04:05" and "15:04".
// Fractional seconds are accepted and dropped.
func ParseClock(str string) (Clock, error) {
	for _, layout := range []string{ClockFormat, "15:04:05.999999999", "15:04"} {
		t, err := time.Parse(layout, str)
		if err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return Clock{}, fmt.Errorf("invalid time %q want format %q", str, ClockFormat)
}

// MustParseClock is like ParseClock but panics on error.
func MustParseClock(str string) Clock {
	c, err := ParseClock(str)
	if err != nil {
		panic(err.Error())
	}
	return c
}

func (c *Clock) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	v, err := ParseClock(str)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}
