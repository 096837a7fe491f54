package engine

import (
	"fmt"
	"time"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// PreWarningLead is how long before a sacred block the closing warning fires.
const PreWarningLead = 15

// EventKind identifies a time-triggered event.
type EventKind string

const (
	EventAlarm    EventKind = "alarm"
	EventPreWarn  EventKind = "pre_warning"
	EventLock     EventKind = "lock"
	EventVitaminD EventKind = "vitamin_d"
)

// Severity classifies how the host should present an event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Event describes something the host should surface. The engine decides
// whether to fire; rendering and playback belong to the Sink.
type Event struct {
	Kind     EventKind
	Key      string
	BlockID  string
	Activity string
	Message  string
	Severity Severity
	Sound    bool // false when muted
	Desktop  bool // also raise a system notification
	At       time.Time
}

// Settings are the evaluator's view of the user settings.
type Settings struct {
	VitaminDEnabled bool
	VitaminDTime    routine.TimeOfDay
}

// State is everything the evaluator carries from one tick to the next.
type State struct {
	Ledger Ledger
	Lock   LockSession
	Muted  bool
}

// Input is what a single tick evaluates.
type Input struct {
	Routine  *routine.Routine
	Now      time.Time
	Settings Settings
}

// Evaluate runs one tick. It is a pure function: the returned State carries
// the updated ledger and lock, and the events say what the host should do.
// Calling it again within the same minute yields no new events.
func Evaluate(state State, in Input) (State, []Event) {
	var events []Event
	day := DayKey(in.Now)
	nowMin := routine.TimeOfDayOf(in.Now)

	emit := func(ev Event) {
		ev.At = in.Now
		ev.Sound = !state.Muted
		state.Ledger = state.Ledger.With(ev.Key)
		events = append(events, ev)
	}

	if r := in.Routine; r != nil {
		for i, b := range r.Blocks {
			start, end := routine.Window(r.Blocks, i)

			if b.Locks() && nowMin >= start && nowMin < end && !state.Lock.Active {
				key := LedgerKey(day, b.ID, "LOCK")
				if !state.Ledger.Has(key) {
					state.Lock = LockSession{Active: true, BlockID: b.ID, Activity: b.Activity, Start: b.Start}
					emit(Event{
						Kind:     EventLock,
						Key:      key,
						BlockID:  b.ID,
						Activity: b.Activity,
						Message:  "Sacred time: " + b.Activity,
						Severity: SeverityWarning,
					})
				}
			}

			if b.AlarmEnabled && nowMin == start {
				key := LedgerKey(day, b.Start.String(), "ALARM")
				if !state.Ledger.Has(key) {
					emit(Event{
						Kind:     EventAlarm,
						Key:      key,
						BlockID:  b.ID,
						Activity: b.Activity,
						Message:  "Alarm: " + b.Activity,
						Severity: SeverityInfo,
					})
				}
			}

			if preWarns(r.Blocks, i) && int(b.Start)-int(nowMin) == PreWarningLead {
				key := LedgerKey(day, b.Start.String(), r.ID)
				if !state.Ledger.Has(key) {
					emit(Event{
						Kind:     EventPreWarn,
						Key:      key,
						BlockID:  b.ID,
						Activity: b.Activity,
						Message: fmt.Sprintf("Work session closes in %d minutes. %q starts soon, save your work.",
							PreWarningLead, b.Activity),
						Severity: SeverityWarning,
						Desktop:  true,
					})
				}
			}
		}
	}

	if in.Settings.VitaminDEnabled && nowMin == in.Settings.VitaminDTime {
		key := LedgerKey(day, "vitamin-d", "REMINDER")
		if !state.Ledger.Has(key) {
			emit(Event{
				Kind:     EventVitaminD,
				Key:      key,
				Message:  "Vitamin D time: get outside for 15 minutes.",
				Severity: SeveritySuccess,
				Desktop:  true,
			})
		}
	}

	return state, events
}

// preWarns reports whether block i is a sacred block entered straight from
// a work block.
func preWarns(blocks []routine.TimeBlock, i int) bool {
	if i == 0 {
		return false
	}
	switch blocks[i].Kind {
	case routine.KindSacred:
		return blocks[i-1].Kind == routine.KindWork
	case routine.KindWork, routine.KindPersonal, routine.KindBreak:
		return false
	default:
		return false
	}
}
