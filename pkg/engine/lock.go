package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// LateShift is how far late-unlock pushes the rest of the day, in minutes.
const LateShift = 15

var (
	// ErrNotLocked is returned when an unlock is requested while unlocked.
	ErrNotLocked = errors.New("not locked")
	// ErrUnknownAction is returned for an unlock action the machine does not know.
	ErrUnknownAction = errors.New("unknown unlock action")
)

// LockSession is the transient screen-lock state. It is rebuilt from block
// evaluation and never persisted.
type LockSession struct {
	Active   bool
	BlockID  string
	Activity string
	Start    routine.TimeOfDay
}

// UnlockAction is one of the user-initiated ways out of a lock.
type UnlockAction string

const (
	// UnlockLate shifts the rest of the day by LateShift, then unlocks.
	UnlockLate UnlockAction = "late"
	// UnlockSkip lets the block lapse without touching the schedule.
	UnlockSkip UnlockAction = "skip"
	// UnlockEmergency has the same effect as skip, framed as an escape hatch.
	UnlockEmergency UnlockAction = "emergency"
)

// lockLapsed labels locks released without a user action.
const lockLapsed UnlockAction = "lapsed"

// UnlockActions lists the actions offered while locked.
var UnlockActions = []UnlockAction{UnlockLate, UnlockSkip, UnlockEmergency}

// ParseUnlockAction parses an action name.
func ParseUnlockAction(s string) (UnlockAction, error) {
	a := UnlockAction(s)
	switch a {
	case UnlockLate, UnlockSkip, UnlockEmergency:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Unlock leaves the Locked state. For UnlockLate the returned routine has
// every block from the locked block onwards shifted by LateShift; otherwise
// r is returned unchanged. The ledger keeps the lock key, so the same block
// does not lock again today.
func Unlock(state State, r routine.Routine, action UnlockAction) (State, routine.Routine, error) {
	if _, err := ParseUnlockAction(string(action)); err != nil {
		return state, r, err
	}
	if !state.Lock.Active {
		return state, r, ErrNotLocked
	}

	out := r
	if action == UnlockLate {
		out = routine.ShiftFrom(r, state.Lock.Start, LateShift)
	}
	state.Lock = LockSession{}
	return state, out, nil
}

// Lapse releases an active lock whose block no longer covers now, either
// because the block's window has passed or because the block is gone from
// the routine. It reports whether the lock was released.
func Lapse(state State, r *routine.Routine, now time.Time) (State, bool) {
	if !state.Lock.Active {
		return state, false
	}
	if r != nil {
		if _, i, ok := r.Block(state.Lock.BlockID); ok {
			start, end := routine.Window(r.Blocks, i)
			if t := routine.TimeOfDayOf(now); t >= start && t < end {
				return state, false
			}
		}
	}
	state.Lock = LockSession{}
	return state, true
}
