package coach

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/tempo/pkg/routine"
)

const legDay = "```json\n" + `{"name": "Leg Day Blitz", "targetMuscle": "legs", "exercises": [
	{"name": "Squats", "sets": "3", "reps": "12", "notes": "Knees over toes"},
	{"name": "Lunges", "sets": "3", "reps": "10"}
]}` + "\n```"

func TestWorkout(t *testing.T) {
	gen := &fakeGenerator{reply: legDay}
	plan, err := New(gen).Workout(context.Background(), "legs", "", "beginner")
	require.NoError(t, err)

	assert.Equal(t, "Leg Day Blitz", plan.Name)
	require.Len(t, plan.Exercises, 2)
	assert.Equal(t, "Knees over toes", plan.Exercises[0].Notes)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Available equipment: bodyweight")
	assert.Contains(t, gen.prompts[0], "Level: beginner")

	b := plan.Block(routine.At(7, 0))
	assert.Equal(t, "Workout: Leg Day Blitz", b.Activity)
	assert.Equal(t, routine.KindPersonal, b.Kind)
	require.Len(t, b.Subtasks, 2)
	assert.Equal(t, "Squats 3x12", b.Subtasks[0].Text)
	assert.Contains(t, b.Note, "1. **Squats**: 3 sets of 12 (Knees over toes)")
}

func TestWorkoutRejectsBadInput(t *testing.T) {
	gen := &fakeGenerator{reply: legDay}
	c := New(gen)

	_, err := c.Workout(context.Background(), "  ", "", "beginner")
	assert.ErrorIs(t, err, ErrInvalidPlan)
	_, err = c.Workout(context.Background(), "legs", "", "olympian")
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Empty(t, gen.prompts, "bad input must not reach the model")
}

func TestParseWorkoutValidates(t *testing.T) {
	for name, reply := range map[string]string{
		"not json":     "Sure! Here is your plan",
		"no exercises": `{"name": "Rest", "exercises": []}`,
		"missing reps": `{"name": "Arms", "exercises": [{"name": "Curls", "sets": "3"}]}`,
		"missing name": `{"exercises": [{"name": "Curls", "sets": "3", "reps": "8"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWorkout(reply)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestMeditation(t *testing.T) {
	gen := &fakeGenerator{reply: "Sit comfortably. [Pause] Breathe in."}
	script, err := New(gen).Meditation(context.Background(), "before a hard meeting", 10)
	require.NoError(t, err)
	assert.Equal(t, "Sit comfortably. [Pause] Breathe in.", script)
	assert.Contains(t, gen.prompts[0], "Estimated length: 10 minutes")

	_, err = New(gen).Meditation(context.Background(), "sleep", 0)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	b := MeditationBlock(routine.At(21, 30), " sleep ", script)
	assert.Equal(t, "Meditation: sleep", b.Activity)
	assert.Equal(t, routine.KindSacred, b.Kind)
	assert.Equal(t, script, b.Note)
}
