package routine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScheduleData is returned when stored or imported schedule data
// cannot be interpreted (bad time, unknown kind, duplicate ids).
var ErrInvalidScheduleData = errors.New("invalid schedule data")

// MinutesPerDay is the number of minutes in one calendar day.
const MinutesPerDay = 24 * 60

// EndOfDay is the synthetic end of the last block of a day (24:00).
const EndOfDay TimeOfDay = MinutesPerDay

// TimeOfDay is a wall-clock time without a date, in minutes since midnight.
type TimeOfDay int

// At builds a TimeOfDay from an hour and minute.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf discards the date component of t and returns its local
// hour and minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidScheduleData, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: hour in %q", ErrInvalidScheduleData, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: minute in %q", ErrInvalidScheduleData, s)
	}
	return At(h, m), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid reports whether t is within 00:00..23:59.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < EndOfDay
}

// Add returns t moved by delta minutes, wrapping around midnight.
func (t TimeOfDay) Add(delta int) TimeOfDay {
	v := (int(t) + delta) % MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return TimeOfDay(v)
}

// String renders t as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalYAML implements yaml.Marshaler.
func (t TimeOfDay) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TimeOfDay) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseTimeOfDay(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheduleData, err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// secondsOfDay is used for progress so it advances inside a minute.
func secondsOfDay(t time.Time) float64 {
	return float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())/1e9
}
