package routine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clockAt(hhmm string, sec int) time.Time {
	t := MustParseTimeOfDay(hhmm)
	return time.Date(2026, 3, 14, t.Hour(), t.Minute(), sec, 0, time.Local)
}

func block(id, hhmm string, kind Kind) TimeBlock {
	return TimeBlock{ID: id, Start: MustParseTimeOfDay(hhmm), Activity: id, Kind: kind, AlarmEnabled: true}
}

func TestResolveHalfwayThroughWorkBlock(t *testing.T) {
	r := &Routine{ID: "r", Blocks: []TimeBlock{
		block("focus", "08:30", KindWork),
		block("rest", "09:30", KindBreak),
	}}

	res := Resolve(r, clockAt("09:00", 0))

	want := []BlockStatus{
		{BlockID: "focus", Status: StatusActive, Progress: 0.5},
		{BlockID: "rest", Status: StatusUpcoming},
	}
	if diff := cmp.Diff(want, res.Blocks); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, res.Current)
	assert.Equal(t, "focus", res.Current.ID)
	assert.Equal(t, 1, res.NextUpcoming)
}

func TestResolveBeforeFirstBlock(t *testing.T) {
	r := &Routine{ID: "r", Blocks: []TimeBlock{
		block("a", "08:00", KindWork),
		block("b", "10:00", KindWork),
	}}

	res := Resolve(r, clockAt("06:00", 0))
	assert.Nil(t, res.Current)
	assert.Equal(t, 0, res.NextUpcoming)
	for _, b := range res.Blocks {
		assert.Equal(t, StatusUpcoming, b.Status)
	}
}

func TestResolveLastBlockRunsUntilMidnight(t *testing.T) {
	r := &Routine{ID: "r", Blocks: []TimeBlock{
		block("a", "08:00", KindWork),
		block("night", "22:00", KindPersonal),
	}}

	res := Resolve(r, clockAt("23:59", 59))
	require.NotNil(t, res.Current)
	assert.Equal(t, "night", res.Current.ID)
	assert.Equal(t, -1, res.NextUpcoming)
	assert.Equal(t, StatusCompleted, res.Blocks[0].Status)
	assert.InDelta(t, 1.0, res.Blocks[1].Progress, 0.001)
}

func TestResolveEmptyAndNil(t *testing.T) {
	for _, r := range []*Routine{nil, {ID: "empty"}} {
		res := Resolve(r, clockAt("12:00", 0))
		assert.Empty(t, res.Blocks)
		assert.Nil(t, res.Current)
		assert.Equal(t, -1, res.NextUpcoming)
	}
}

func TestResolveStatusIsMonotonic(t *testing.T) {
	r := DefaultRoutine()
	rank := map[Status]int{StatusCompleted: 0, StatusActive: 1, StatusUpcoming: 2}

	for minute := 0; minute < MinutesPerDay; minute += 7 {
		now := time.Date(2026, 3, 14, minute/60, minute%60, 30, 0, time.Local)
		res := Resolve(&r, now)

		active := 0
		for i, b := range res.Blocks {
			if b.Status == StatusActive {
				active++
			}
			if i > 0 {
				assert.LessOrEqual(t, rank[res.Blocks[i-1].Status], rank[b.Status],
					"status must not go backwards at %02d:%02d", minute/60, minute%60)
			}
			assert.GreaterOrEqual(t, b.Progress, 0.0)
			assert.LessOrEqual(t, b.Progress, 1.0)
		}
		assert.LessOrEqual(t, active, 1)
	}
}

func TestResolveProgressNonDecreasing(t *testing.T) {
	r := &Routine{ID: "r", Blocks: []TimeBlock{
		block("a", "10:00", KindWork),
		block("b", "10:20", KindBreak),
	}}

	last := -1.0
	for sec := 0; sec < 20*60; sec += 5 {
		now := time.Date(2026, 3, 14, 10, sec/60, sec%60, 0, time.Local)
		res := Resolve(r, now)
		require.Equal(t, StatusActive, res.Blocks[0].Status)
		assert.GreaterOrEqual(t, res.Blocks[0].Progress, last)
		last = res.Blocks[0].Progress
	}
}

func TestCompletionPercent(t *testing.T) {
	r := &Routine{ID: "r", Blocks: []TimeBlock{
		block("a", "08:00", KindWork),
		block("b", "09:00", KindWork),
		block("c", "10:00", KindWork),
		block("d", "11:00", KindWork),
	}}

	assert.Equal(t, 0, CompletionPercent(r, clockAt("07:00", 0)))
	assert.Equal(t, 50, CompletionPercent(r, clockAt("10:30", 0)))
	assert.Equal(t, 75, CompletionPercent(r, clockAt("23:00", 0)))
	assert.Equal(t, 0, CompletionPercent(nil, clockAt("23:00", 0)))
}
