package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/tempo/pkg/engine"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func firedAt(day int, hh, mm int) time.Time {
	return time.Date(2026, 3, day, hh, mm, 0, 0, time.UTC)
}

func TestRecordAndFiredKeys(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	ev := engine.Event{
		Kind:     engine.EventAlarm,
		Key:      engine.LedgerKey("2026-03-14", "08:30", "ALARM"),
		BlockID:  "focus",
		Activity: "Deep work",
		At:       firedAt(14, 8, 30),
	}
	require.NoError(t, j.Record(ctx, ev))
	require.NoError(t, j.Record(ctx, ev), "duplicate keys are ignored")
	require.NoError(t, j.Record(ctx, engine.Event{
		Kind: engine.EventVitaminD,
		Key:  engine.LedgerKey("2026-03-15", "vitamin-d", "REMINDER"),
		At:   firedAt(15, 10, 0),
	}))

	keys, err := j.FiredKeys(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-14|08:30|ALARM"}, keys)

	fired, err := j.Fired(ctx, "2026-03-14")
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, engine.EventAlarm, fired[0].Kind)
	assert.Equal(t, "Deep work", fired[0].Activity)
	assert.True(t, fired[0].FiredAt.Equal(ev.At))

	keys, err = j.FiredKeys(ctx, "2026-03-16")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestJournalSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, engine.Event{Kind: engine.EventLock, Key: "2026-03-14|lunch|LOCK", At: firedAt(14, 13, 0)}))
	require.NoError(t, j.Close())

	j, err = Open(ctx, path)
	require.NoError(t, err)
	defer j.Close()
	keys, err := j.FiredKeys(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-14|lunch|LOCK"}, keys)
}

func TestEvaluationUpsert(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	ev := Evaluation{Date: "2026-03-14", Rating: 4, PlanCompletion: "partial", Mood: "good", Energy: 7, Note: "ok day"}
	require.NoError(t, j.SaveEvaluation(ctx, ev))

	ev.Rating = 5
	ev.Note = ""
	require.NoError(t, j.SaveEvaluation(ctx, ev))

	got, err := j.Evaluation(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = j.Evaluation(ctx, "2026-03-13")
	assert.ErrorIs(t, err, ErrNoEvaluation)
}

func TestEvaluationValidation(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	valid := Evaluation{Date: "2026-03-14", Rating: 3, PlanCompletion: "yes", Mood: "neutral", Energy: 5}

	tests := []struct {
		name   string
		mutate func(*Evaluation)
	}{
		{"rating too high", func(e *Evaluation) { e.Rating = 6 }},
		{"rating missing", func(e *Evaluation) { e.Rating = 0 }},
		{"unknown plan", func(e *Evaluation) { e.PlanCompletion = "mostly" }},
		{"unknown mood", func(e *Evaluation) { e.Mood = "meh" }},
		{"energy out of range", func(e *Evaluation) { e.Energy = 11 }},
		{"bad date", func(e *Evaluation) { e.Date = "14/03/2026" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := valid
			tt.mutate(&ev)
			assert.Error(t, j.SaveEvaluation(ctx, ev))
		})
	}
	assert.NoError(t, j.SaveEvaluation(ctx, valid))
}

func TestStreak(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	for _, date := range []string{"2026-03-10", "2026-03-12", "2026-03-13", "2026-03-14"} {
		require.NoError(t, j.SaveEvaluation(ctx, Evaluation{Date: date, Rating: 3, PlanCompletion: "yes", Mood: "good", Energy: 5}))
	}

	streak, err := j.Streak(ctx, firedAt(14, 21, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	streak, err = j.Streak(ctx, firedAt(15, 21, 0))
	require.NoError(t, err)
	assert.Zero(t, streak)

	evals, err := j.Evaluations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, "2026-03-14", evals[0].Date)
}
