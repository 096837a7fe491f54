package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/tempo/pkg/routine"
)

func clockAt(hhmm string, sec int) time.Time {
	t := routine.MustParseTimeOfDay(hhmm)
	return time.Date(2026, 3, 14, t.Hour(), t.Minute(), sec, 0, time.Local)
}

func block(id, hhmm string, kind routine.Kind) routine.TimeBlock {
	return routine.TimeBlock{ID: id, Start: routine.MustParseTimeOfDay(hhmm), Activity: id, Kind: kind, AlarmEnabled: true}
}

func sacredLock(id, hhmm string) routine.TimeBlock {
	b := block(id, hhmm, routine.KindSacred)
	b.EnforceLock = true
	return b
}

func kinds(events []Event) []EventKind {
	var out []EventKind
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func countKind(events []Event, k EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

func TestEvaluateSacredLockFiresOncePerMinute(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{
		block("deep-work", "12:00", routine.KindWork),
		sacredLock("lunch", "13:00"),
	}}
	state := State{Ledger: NewLedger()}

	state, events := Evaluate(state, Input{Routine: r, Now: clockAt("13:00", 0)})
	assert.Equal(t, 1, countKind(events, EventLock))
	assert.True(t, state.Lock.Active)
	assert.Equal(t, "lunch", state.Lock.BlockID)
	assert.Equal(t, routine.MustParseTimeOfDay("13:00"), state.Lock.Start)

	state, events = Evaluate(state, Input{Routine: r, Now: clockAt("13:00", 5)})
	assert.Empty(t, events)
	assert.True(t, state.Lock.Active)
}

func TestEvaluateLockKeyUsesBlockID(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{sacredLock("lunch", "13:00")}}

	state, events := Evaluate(State{Ledger: NewLedger()}, Input{Routine: r, Now: clockAt("13:10", 0)})
	require.Len(t, events, 1)
	assert.Equal(t, "2026-03-14|lunch|LOCK", events[0].Key)
	assert.True(t, state.Ledger.Has("2026-03-14|lunch|LOCK"))
	assert.Equal(t, SeverityWarning, events[0].Severity)
}

func TestEvaluateLockDoesNotReengageAfterUnlock(t *testing.T) {
	r := routine.Routine{ID: "day", Blocks: []routine.TimeBlock{sacredLock("lunch", "13:00")}}
	state, _ := Evaluate(State{Ledger: NewLedger()}, Input{Routine: &r, Now: clockAt("13:00", 0)})
	require.True(t, state.Lock.Active)

	state, _, err := Unlock(state, r, UnlockSkip)
	require.NoError(t, err)

	state, events := Evaluate(state, Input{Routine: &r, Now: clockAt("13:20", 0)})
	assert.Empty(t, events)
	assert.False(t, state.Lock.Active)
}

func TestEvaluateSacredWithoutEnforceLockNeverLocks(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{block("lunch", "13:00", routine.KindSacred)}}

	state, events := Evaluate(State{Ledger: NewLedger()}, Input{Routine: r, Now: clockAt("13:00", 0)})
	assert.Equal(t, []EventKind{EventAlarm}, kinds(events))
	assert.False(t, state.Lock.Active)
}

func TestEvaluatePreWarningBeforeSacredBlock(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{
		block("deep-work", "14:00", routine.KindWork),
		block("family", "15:00", routine.KindSacred),
	}}
	state := State{Ledger: NewLedger()}

	state, events := Evaluate(state, Input{Routine: r, Now: clockAt("14:45", 0)})
	require.Len(t, events, 1)
	assert.Equal(t, EventPreWarn, events[0].Kind)
	assert.Equal(t, "2026-03-14|15:00|day", events[0].Key)
	assert.True(t, events[0].Desktop)
	assert.Contains(t, events[0].Message, "15 minutes")

	state, events = Evaluate(state, Input{Routine: r, Now: clockAt("14:45", 30)})
	assert.Empty(t, events)

	_, events = Evaluate(state, Input{Routine: r, Now: clockAt("14:46", 0)})
	assert.Empty(t, events)
}

func TestEvaluatePreWarningNeedsWorkBefore(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{
		block("walk", "14:00", routine.KindBreak),
		block("family", "15:00", routine.KindSacred),
	}}

	_, events := Evaluate(State{Ledger: NewLedger()}, Input{Routine: r, Now: clockAt("14:45", 0)})
	assert.Empty(t, events)
}

func TestEvaluateAlarm(t *testing.T) {
	quiet := block("read", "09:30", routine.KindPersonal)
	quiet.AlarmEnabled = false
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{
		block("focus", "08:30", routine.KindWork),
		quiet,
	}}
	state := State{Ledger: NewLedger()}

	state, events := Evaluate(state, Input{Routine: r, Now: clockAt("08:30", 12)})
	require.Len(t, events, 1)
	assert.Equal(t, EventAlarm, events[0].Kind)
	assert.Equal(t, "2026-03-14|08:30|ALARM", events[0].Key)
	assert.Equal(t, "Alarm: focus", events[0].Message)
	assert.True(t, events[0].Sound)

	_, events = Evaluate(state, Input{Routine: r, Now: clockAt("09:30", 0)})
	assert.Empty(t, events)
}

func TestEvaluateVitaminD(t *testing.T) {
	settings := Settings{VitaminDEnabled: true, VitaminDTime: routine.At(10, 0)}
	state := State{Ledger: NewLedger()}

	state, events := Evaluate(state, Input{Now: clockAt("10:00", 0), Settings: settings})
	require.Len(t, events, 1)
	assert.Equal(t, EventVitaminD, events[0].Kind)
	assert.Equal(t, SeveritySuccess, events[0].Severity)

	_, events = Evaluate(state, Input{Now: clockAt("10:00", 40), Settings: settings})
	assert.Empty(t, events)

	settings.VitaminDEnabled = false
	_, events = Evaluate(State{Ledger: NewLedger()}, Input{Now: clockAt("10:00", 0), Settings: settings})
	assert.Empty(t, events)
}

func TestEvaluateMutedSilencesSound(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{block("focus", "08:30", routine.KindWork)}}

	_, events := Evaluate(State{Ledger: NewLedger(), Muted: true}, Input{Routine: r, Now: clockAt("08:30", 0)})
	require.Len(t, events, 1)
	assert.False(t, events[0].Sound)
}

func TestEvaluateEmptyRoutine(t *testing.T) {
	for _, r := range []*routine.Routine{nil, {ID: "empty"}} {
		state, events := Evaluate(State{Ledger: NewLedger()}, Input{Routine: r, Now: clockAt("13:00", 0)})
		assert.Empty(t, events)
		assert.False(t, state.Lock.Active)
		assert.Zero(t, state.Ledger.Len())
	}
}

func TestEvaluateIsIdempotentWithinMinute(t *testing.T) {
	r := routine.DefaultRoutine()
	settings := Settings{VitaminDEnabled: true, VitaminDTime: routine.At(10, 0)}
	state := State{Ledger: NewLedger()}

	for m := 0; m < routine.MinutesPerDay; m++ {
		tod := routine.TimeOfDay(m)
		now := time.Date(2026, 3, 14, tod.Hour(), tod.Minute(), 0, 0, time.Local)

		var first []Event
		state, first = Evaluate(state, Input{Routine: &r, Now: now, Settings: settings})
		for _, ev := range first {
			assert.True(t, state.Ledger.Has(ev.Key))
		}

		var again []Event
		state, again = Evaluate(state, Input{Routine: &r, Now: now.Add(30 * time.Second), Settings: settings})
		assert.Empty(t, again, "duplicate events at %s", tod)

		if state.Lock.Active {
			state, _, _ = Unlock(state, r, UnlockSkip)
		}
	}
}

func TestEvaluateNewDayFiresAgain(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{block("focus", "08:30", routine.KindWork)}}
	state, events := Evaluate(State{Ledger: NewLedger()}, Input{Routine: r, Now: clockAt("08:30", 0)})
	require.Len(t, events, 1)

	tomorrow := clockAt("08:30", 0).AddDate(0, 0, 1)
	state.Ledger = state.Ledger.Prune(DayKey(tomorrow))
	assert.Zero(t, state.Ledger.Len())

	_, events = Evaluate(state, Input{Routine: r, Now: tomorrow})
	assert.Len(t, events, 1)
}

func TestEvaluateDoesNotMutateInputLedger(t *testing.T) {
	r := &routine.Routine{ID: "day", Blocks: []routine.TimeBlock{block("focus", "08:30", routine.KindWork)}}
	before := State{Ledger: NewLedger()}

	after, _ := Evaluate(before, Input{Routine: r, Now: clockAt("08:30", 0)})
	assert.Zero(t, before.Ledger.Len())
	assert.Equal(t, 1, after.Ledger.Len())
}
