package routine

import (
	"math"
	"time"
)

// Status is the derived state of a block relative to the current time.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// BlockStatus is the resolved status of one block.
type BlockStatus struct {
	BlockID  string
	Status   Status
	Progress float64 // fraction in [0,1]; zero unless Status is active
}

// Resolution is the result of resolving a routine against an instant.
type Resolution struct {
	Blocks       []BlockStatus
	Current      *TimeBlock
	NextUpcoming int // index of the first block starting after now, -1 if none
}

// Window returns the [start, end) minutes of block i. The last block ends
// at EndOfDay.
func Window(blocks []TimeBlock, i int) (start, end TimeOfDay) {
	start = blocks[i].Start
	end = EndOfDay
	if i+1 < len(blocks) {
		end = blocks[i+1].Start
	}
	return start, end
}

// Resolve computes every block's status, the current block and the next
// upcoming block for now. Blocks must already be sorted by start time.
// Only the local time-of-day of now is used.
func Resolve(r *Routine, now time.Time) Resolution {
	res := Resolution{NextUpcoming: -1}
	if r == nil || len(r.Blocks) == 0 {
		return res
	}

	nowMin := TimeOfDayOf(now)
	nowSec := secondsOfDay(now)

	res.Blocks = make([]BlockStatus, len(r.Blocks))
	for i := range r.Blocks {
		start, end := Window(r.Blocks, i)
		bs := BlockStatus{BlockID: r.Blocks[i].ID}

		switch {
		case nowMin >= end:
			bs.Status = StatusCompleted
		case nowMin >= start:
			bs.Status = StatusActive
			bs.Progress = progress(nowSec, start, end)
			if res.Current == nil {
				b := r.Blocks[i]
				res.Current = &b
			}
		default:
			bs.Status = StatusUpcoming
		}

		if res.NextUpcoming < 0 && start > nowMin {
			res.NextUpcoming = i
		}
		res.Blocks[i] = bs
	}
	return res
}

func progress(nowSec float64, start, end TimeOfDay) float64 {
	span := float64(end-start) * 60
	if span <= 0 {
		return 0
	}
	p := (nowSec - float64(start)*60) / span
	return math.Max(0, math.Min(1, p))
}

// CompletionPercent returns the rounded share of blocks already completed.
func CompletionPercent(r *Routine, now time.Time) int {
	if r == nil || len(r.Blocks) == 0 {
		return 0
	}
	res := Resolve(r, now)
	done := 0
	for _, b := range res.Blocks {
		if b.Status == StatusCompleted {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(r.Blocks))))
}
