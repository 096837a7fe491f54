package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/tempo/pkg/routine"
)

func lockedAt(t *testing.T, r routine.Routine, hhmm string) State {
	t.Helper()
	state, _ := Evaluate(State{Ledger: NewLedger()}, Input{Routine: &r, Now: clockAt(hhmm, 0)})
	require.True(t, state.Lock.Active)
	return state
}

func eveningRoutine() routine.Routine {
	return routine.Routine{ID: "evening", Blocks: []routine.TimeBlock{
		block("standup", "09:00", routine.KindWork),
		block("build", "14:00", routine.KindWork),
		sacredLock("family", "18:00"),
		block("read", "20:00", routine.KindPersonal),
		block("sleep", "22:30", routine.KindBreak),
	}}
}

func TestUnlockLateShiftsRemainingBlocks(t *testing.T) {
	r := eveningRoutine()
	state := lockedAt(t, r, "18:00")

	state, shifted, err := Unlock(state, r, UnlockLate)
	require.NoError(t, err)
	assert.False(t, state.Lock.Active)

	want := map[string]string{
		"standup": "09:00",
		"build":   "14:00",
		"family":  "18:15",
		"read":    "20:15",
		"sleep":   "22:45",
	}
	for _, b := range shifted.Blocks {
		assert.Equal(t, want[b.ID], b.Start.String(), b.ID)
	}
	assert.NoError(t, shifted.Validate())

	// the caller's routine is untouched
	assert.Equal(t, "18:00", r.Blocks[2].Start.String())
}

func TestUnlockSkipAndEmergencyLeaveScheduleAlone(t *testing.T) {
	for _, action := range []UnlockAction{UnlockSkip, UnlockEmergency} {
		t.Run(string(action), func(t *testing.T) {
			r := eveningRoutine()
			state := lockedAt(t, r, "18:30")

			state, out, err := Unlock(state, r, action)
			require.NoError(t, err)
			assert.False(t, state.Lock.Active)
			assert.Equal(t, r, out)
			assert.True(t, state.Ledger.Has("2026-03-14|family|LOCK"))
		})
	}
}

func TestUnlockWhileUnlocked(t *testing.T) {
	r := eveningRoutine()
	_, _, err := Unlock(State{Ledger: NewLedger()}, r, UnlockSkip)
	assert.ErrorIs(t, err, ErrNotLocked)
}

func TestUnlockUnknownAction(t *testing.T) {
	r := eveningRoutine()
	state := lockedAt(t, r, "18:00")

	out, _, err := Unlock(state, r, "snooze")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.True(t, out.Lock.Active)
}

func TestLockedAlwaysHasExits(t *testing.T) {
	r := eveningRoutine()
	for _, action := range UnlockActions {
		state := lockedAt(t, r, "18:00")
		state, _, err := Unlock(state, r, action)
		require.NoError(t, err, action)
		assert.False(t, state.Lock.Active, action)
	}
}

func TestParseUnlockAction(t *testing.T) {
	a, err := ParseUnlockAction("emergency")
	require.NoError(t, err)
	assert.Equal(t, UnlockEmergency, a)

	_, err = ParseUnlockAction("")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestLapse(t *testing.T) {
	r := eveningRoutine()
	locked := lockedAt(t, r, "18:00")

	state, lapsed := Lapse(locked, &r, clockAt("19:59", 30))
	assert.False(t, lapsed)
	assert.True(t, state.Lock.Active)

	state, lapsed = Lapse(locked, &r, clockAt("20:00", 0))
	assert.True(t, lapsed)
	assert.False(t, state.Lock.Active)

	without, err := r.WithoutBlock("family")
	require.NoError(t, err)
	_, lapsed = Lapse(locked, &without, clockAt("18:30", 0))
	assert.True(t, lapsed, "block removed while locked")

	_, lapsed = Lapse(locked, nil, clockAt("18:30", 0))
	assert.True(t, lapsed, "no routine")

	_, lapsed = Lapse(State{Ledger: NewLedger()}, &r, clockAt("20:00", 0))
	assert.False(t, lapsed)
}
