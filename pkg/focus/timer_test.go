package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

func TestTimerCountsDownAndPauses(t *testing.T) {
	tm := New(0, 0)
	assert.Equal(t, PhaseFocus, tm.Phase)
	assert.Equal(t, "25:00", tm.Clock(t0))

	tm = tm.Toggle(t0)
	assert.True(t, tm.Running)
	assert.Equal(t, "24:30", tm.Clock(t0.Add(30*time.Second)))

	tm = tm.Toggle(t0.Add(time.Minute))
	assert.False(t, tm.Running)
	assert.Equal(t, "24:00", tm.Clock(t0.Add(time.Hour)), "paused timer holds")

	tm = tm.Toggle(t0.Add(time.Hour))
	assert.Equal(t, 23*time.Minute, tm.Remaining(t0.Add(time.Hour+time.Minute)))
}

func TestTimerAdvanceSwitchesPhase(t *testing.T) {
	tm := New(2*time.Minute, time.Minute).Toggle(t0)

	tm, done := tm.Advance(t0.Add(time.Minute))
	assert.False(t, done)

	tm, done = tm.Advance(t0.Add(2*time.Minute + time.Second))
	assert.True(t, done)
	assert.Equal(t, PhaseBreak, tm.Phase)
	assert.False(t, tm.Running)
	assert.Equal(t, "01:00", tm.Clock(t0))
	assert.Equal(t, "Focus session done. Take a break.", tm.Done())

	tm, done = tm.Toggle(t0).Advance(t0.Add(2 * time.Minute))
	assert.True(t, done)
	assert.Equal(t, PhaseFocus, tm.Phase)
	assert.Equal(t, "Break over. Ready to go back?", tm.Done())
}

func TestTimerReset(t *testing.T) {
	tm := New(0, 0).Toggle(t0)
	tm = tm.Reset()
	assert.False(t, tm.Running)
	assert.Equal(t, DefaultFocus, tm.Remaining(t0.Add(time.Hour)))
}

func TestTimerNeverNegative(t *testing.T) {
	tm := New(time.Minute, 0).Toggle(t0)
	assert.Zero(t, tm.Remaining(t0.Add(time.Hour)))
	assert.Equal(t, "00:00", tm.Clock(t0.Add(time.Hour)))
}
