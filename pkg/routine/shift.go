package routine

// Shift moves every block by delta minutes (positive is later) and re-sorts.
// Times wrap around midnight: a block pushed past 23:59 lands early the same
// day and sorts there. Shifting back by -delta restores every start time.
func Shift(r Routine, delta int) Routine {
	return shiftWhere(r, delta, func(TimeBlock) bool { return true })
}

// ShiftFrom moves only the blocks starting at or after from.
func ShiftFrom(r Routine, from TimeOfDay, delta int) Routine {
	return shiftWhere(r, delta, func(b TimeBlock) bool { return b.Start >= from })
}

func shiftWhere(r Routine, delta int, match func(TimeBlock) bool) Routine {
	out := r.Clone()
	if delta == 0 {
		return out
	}
	for i, b := range out.Blocks {
		if match(b) {
			out.Blocks[i].Start = b.Start.Add(delta)
		}
	}
	SortBlocks(out.Blocks)
	return out
}
