package engine

import (
	"sort"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// DayKey returns the calendar-day component used in ledger keys.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// LedgerKey builds a dedup key "<day>|<part>|<kind>".
func LedgerKey(day, part, kind string) string {
	return day + "|" + part + "|" + kind
}

// Ledger records which time-triggered events already fired. It is
// copy-on-write: With returns a new Ledger and leaves the receiver intact.
type Ledger struct {
	keys map[string]struct{}
}

// NewLedger returns a ledger seeded with keys.
func NewLedger(keys ...string) Ledger {
	l := Ledger{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		l.keys[k] = struct{}{}
	}
	return l
}

// Has reports whether key already fired.
func (l Ledger) Has(key string) bool {
	_, ok := l.keys[key]
	return ok
}

// With returns a ledger that also contains key.
func (l Ledger) With(key string) Ledger {
	if l.Has(key) {
		return l
	}
	out := Ledger{keys: make(map[string]struct{}, len(l.keys)+1)}
	for k := range l.keys {
		out.keys[k] = struct{}{}
	}
	out.keys[key] = struct{}{}
	return out
}

// Len returns the number of recorded keys.
func (l Ledger) Len() int { return len(l.keys) }

// Keys returns the recorded keys in sorted order.
func (l Ledger) Keys() []string {
	out := make([]string, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Prune drops every key that does not belong to day.
func (l Ledger) Prune(day string) Ledger {
	out := Ledger{keys: make(map[string]struct{})}
	prefix := day + "|"
	for k := range l.keys {
		if strings.HasPrefix(k, prefix) {
			out.keys[k] = struct{}{}
		}
	}
	return out
}
