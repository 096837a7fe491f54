package routine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtasks(t *testing.T) {
	b := NewBlock(MustParseTimeOfDay("09:00"), KindWork, "Inbox")
	b = b.WithSubtask("  reply to Ana ").WithSubtask("archive").WithSubtask("   ")
	require.Len(t, b.Subtasks, 2)
	assert.Equal(t, "reply to Ana", b.Subtasks[0].Text)
	assert.Zero(t, b.SubtaskPercent())

	toggled, err := b.ToggleSubtask(b.Subtasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, toggled.SubtaskPercent())
	assert.False(t, b.Subtasks[0].Done, "toggle must not mutate the original")

	toggled, err = toggled.ToggleSubtask(b.Subtasks[1].ID[:8])
	require.NoError(t, err)
	assert.Equal(t, 100, toggled.SubtaskPercent())

	removed, err := toggled.WithoutSubtask(b.Subtasks[0].ID)
	require.NoError(t, err)
	require.Len(t, removed.Subtasks, 1)
	assert.Equal(t, "archive", removed.Subtasks[0].Text)
	assert.Len(t, toggled.Subtasks, 2)

	_, err = b.ToggleSubtask("nope")
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
	_, err = b.WithoutSubtask("")
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
}

func TestSubtaskPercentRounds(t *testing.T) {
	b := TimeBlock{Subtasks: []Subtask{{ID: "a", Done: true}, {ID: "b"}, {ID: "c"}}}
	assert.Equal(t, 33, b.SubtaskPercent())
}
