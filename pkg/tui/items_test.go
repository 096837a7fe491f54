package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/tempo/pkg/routine"
)

func TestParseBlockInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		start    string
		kind     routine.Kind
		activity string
		lock     bool
		wantErr  bool
	}{
		{name: "with type", input: "14:00 break Walk outside", start: "14:00", kind: routine.KindBreak, activity: "Walk outside"},
		{name: "type is case insensitive", input: "19:30 Sacred Dinner", start: "19:30", kind: routine.KindSacred, activity: "Dinner", lock: true},
		{name: "type omitted", input: "09:00 Standup", start: "09:00", kind: routine.KindWork, activity: "Standup"},
		{name: "type word as the only activity", input: "12:00 break", start: "12:00", kind: routine.KindWork, activity: "break"},
		{name: "missing activity", input: "09:00", wantErr: true},
		{name: "bad time", input: "9am Standup", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlockInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, b.Start.String())
			assert.Equal(t, tt.kind, b.Kind)
			assert.Equal(t, tt.activity, b.Activity)
			assert.Equal(t, tt.lock, b.EnforceLock)
			assert.True(t, b.AlarmEnabled)
			assert.NotEmpty(t, b.ID)
		})
	}
}

func TestBuildTimeline(t *testing.T) {
	r := testRoutine()
	now := time.Date(2026, 3, 14, 14, 30, 0, 0, time.Local)

	items := BuildTimeline(&r, now)
	require.Len(t, items, len(r.Blocks))

	assert.Equal(t, routine.StatusCompleted, items[0].Status)
	assert.Equal(t, routine.StatusActive, items[1].Status)
	assert.InDelta(t, 0.125, items[1].Progress, 0.001) // 30 of 240 minutes
	assert.Equal(t, "18:00", items[1].End.String())
	assert.Equal(t, routine.StatusUpcoming, items[2].Status)
	assert.True(t, items[2].IsNext)
	assert.False(t, items[3].IsNext)
	assert.Equal(t, routine.EndOfDay, items[len(items)-1].End)

	assert.Equal(t, 1, CurrentIndex(items))
}

func TestBuildTimelineNoRoutine(t *testing.T) {
	assert.Empty(t, BuildTimeline(nil, time.Now()))
	assert.Equal(t, -1, CurrentIndex(nil))
}

func TestProgressBarWidth(t *testing.T) {
	for _, f := range []float64{0, 0.33, 1, 1.5, -1} {
		assert.Equal(t, 10, lipgloss.Width(progressBar(f, 10)), "fraction %v", f)
	}
	assert.Empty(t, progressBar(0.5, 0))
}

func TestRelevantChanges(t *testing.T) {
	assert.True(t, relevant("/data/routines/evening.md"))
	assert.True(t, relevant("/data/settings.yaml"))
	assert.False(t, relevant("/data/routines/.evening.md.12345"))
	assert.False(t, relevant("/data/journal.db"))
	assert.False(t, relevant("/data/tempo.log"))
}
