// Package focus implements the focus/break countdown that runs alongside
// the routine.
package focus

import (
	"fmt"
	"time"
)

// Phase is the kind of session being timed.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Default session lengths.
const (
	DefaultFocus = 25 * time.Minute
	DefaultBreak = 5 * time.Minute
)

// Timer is a pausable countdown. It measures against the wall clock, so a
// slow or irregular caller never loses time. Timer is a value; every
// method returns the updated copy.
type Timer struct {
	Phase   Phase
	Running bool

	focusLen time.Duration
	breakLen time.Duration
	left     time.Duration // remaining when last paused or started
	since    time.Time     // when Running became true
}

// New returns a stopped timer at the start of a focus session.
func New(focusLen, breakLen time.Duration) Timer {
	if focusLen <= 0 {
		focusLen = DefaultFocus
	}
	if breakLen <= 0 {
		breakLen = DefaultBreak
	}
	return Timer{Phase: PhaseFocus, focusLen: focusLen, breakLen: breakLen, left: focusLen}
}

// Remaining returns the time left in the current phase at now.
func (t Timer) Remaining(now time.Time) time.Duration {
	if !t.Running {
		return t.left
	}
	left := t.left - now.Sub(t.since)
	if left < 0 {
		return 0
	}
	return left
}

// Started reports whether the current phase has begun: the timer runs, or
// was paused partway.
func (t Timer) Started() bool {
	return t.Running || t.left != t.length(t.Phase)
}

// Toggle starts a stopped timer or pauses a running one.
func (t Timer) Toggle(now time.Time) Timer {
	if t.Running {
		t.left = t.Remaining(now)
		t.Running = false
		return t
	}
	t.since = now
	t.Running = true
	return t
}

// Reset stops the timer and refills the current phase.
func (t Timer) Reset() Timer {
	t.Running = false
	t.left = t.length(t.Phase)
	return t
}

// Advance finishes the phase once its time is up: the timer stops and
// switches to the other phase. It reports whether a phase ended.
func (t Timer) Advance(now time.Time) (Timer, bool) {
	if !t.Running || t.Remaining(now) > 0 {
		return t, false
	}
	if t.Phase == PhaseFocus {
		t.Phase = PhaseBreak
	} else {
		t.Phase = PhaseFocus
	}
	return t.Reset(), true
}

// Done describes the phase that just ended, given the timer returned by
// Advance.
func (t Timer) Done() string {
	if t.Phase == PhaseBreak {
		return "Focus session done. Take a break."
	}
	return "Break over. Ready to go back?"
}

// Clock formats the remaining time as MM:SS.
func (t Timer) Clock(now time.Time) string {
	left := t.Remaining(now).Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(left/time.Minute), int(left%time.Minute/time.Second))
}

func (t Timer) length(p Phase) time.Duration {
	if p == PhaseBreak {
		return t.breakLen
	}
	return t.focusLen
}
