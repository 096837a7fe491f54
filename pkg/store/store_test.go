package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/tempo/pkg/routine"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	return s
}

func TestNewStoreSeedsPresets(t *testing.T) {
	s := setupTestStore(t)

	routines, err := s.ListRoutines()
	require.NoError(t, err)
	assert.Len(t, routines, len(routine.Presets()))

	_, err = os.Stat(filepath.Join(s.RoutinesDir(), routine.DefaultRoutineID+".md"))
	assert.NoError(t, err)

	id, err := s.ActiveID()
	require.NoError(t, err)
	assert.Equal(t, routine.DefaultRoutineID, id)
}

func TestNewStoreDoesNotReseed(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.DeleteRoutine("split-shift")
	require.NoError(t, err)

	s2, err := NewStore(s.Root)
	require.NoError(t, err)
	_, err = s2.LoadRoutine("split-shift")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndLoadRoutine(t *testing.T) {
	s := setupTestStore(t)

	r := routine.Routine{ID: "custom", Name: "Custom", Description: "mine"}
	r = r.WithBlock(routine.TimeBlock{ID: "late", Start: routine.At(20, 0), Activity: "Read", Kind: routine.KindPersonal, AlarmEnabled: true})
	r = r.WithBlock(routine.TimeBlock{ID: "early", Start: routine.At(6, 0), Activity: "Run", Kind: routine.KindBreak})
	require.NoError(t, s.CreateRoutine(r))

	loaded, err := s.LoadRoutine("custom")
	require.NoError(t, err)
	assert.Equal(t, r, *loaded)

	assert.ErrorIs(t, s.CreateRoutine(r), ErrExists)
}

func TestLoadRoutineRejectsBadTimes(t *testing.T) {
	s := setupTestStore(t)
	content := "---\nid: bad\nname: Bad\nblocks:\n  - id: x\n    time: \"7am\"\n    activity: Wake\n    type: personal\n---\n"
	require.NoError(t, os.WriteFile(s.RoutinePath("bad"), []byte(content), 0644))

	_, err := s.LoadRoutine("bad")
	assert.ErrorIs(t, err, routine.ErrInvalidScheduleData)

	// the rest still list
	routines, err := s.ListRoutines()
	assert.ErrorIs(t, err, routine.ErrInvalidScheduleData)
	assert.Len(t, routines, len(routine.Presets()))
}

func TestLoadRoutineRejectsPathIDs(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.LoadRoutine("../settings")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRoutineRejectsInvalid(t *testing.T) {
	s := setupTestStore(t)
	r := routine.Routine{ID: "dupes", Blocks: []routine.TimeBlock{
		{ID: "a", Start: routine.At(9, 0), Kind: routine.KindWork},
		{ID: "a", Start: routine.At(10, 0), Kind: routine.KindWork},
	}}
	assert.ErrorIs(t, s.SaveRoutine(r), routine.ErrInvalidScheduleData)
}

func TestSetActive(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SetActive("split-shift"))
	r, err := s.ActiveRoutine()
	require.NoError(t, err)
	assert.Equal(t, "split-shift", r.ID)

	assert.ErrorIs(t, s.SetActive("nope"), ErrNotFound)
}

func TestDeleteInactiveRoutineKeepsSelection(t *testing.T) {
	s := setupTestStore(t)

	active, err := s.DeleteRoutine("the-change")
	require.NoError(t, err)
	assert.Equal(t, routine.DefaultRoutineID, active)

	_, err = s.DeleteRoutine("the-change")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteActiveRoutineFallsBack(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SetActive("split-shift"))

	active, err := s.DeleteRoutine("split-shift")
	require.NoError(t, err)
	assert.NotEqual(t, "split-shift", active)

	r, err := s.ActiveRoutine()
	require.NoError(t, err)
	assert.Equal(t, active, r.ID)
}

func TestDeleteLastRoutineRestoresPresets(t *testing.T) {
	s := setupTestStore(t)

	for {
		routines, err := s.ListRoutines()
		require.NoError(t, err)
		if len(routines) == 1 {
			require.NoError(t, s.SetActive(routines[0].ID))
			break
		}
		_, err = s.DeleteRoutine(routines[0].ID)
		require.NoError(t, err)
	}

	routines, err := s.ListRoutines()
	require.NoError(t, err)
	active, err := s.DeleteRoutine(routines[0].ID)
	require.NoError(t, err)
	assert.Equal(t, routine.DefaultRoutineID, active)

	r, err := s.ActiveRoutine()
	require.NoError(t, err)
	assert.Equal(t, routine.DefaultRoutineID, r.ID)
	assert.NotEmpty(t, r.Blocks)
}

func TestActiveRoutineRepairsDanglingSelector(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SetActive("split-shift"))
	require.NoError(t, os.Remove(s.RoutinePath("split-shift")))

	r, err := s.ActiveRoutine()
	require.NoError(t, err)
	assert.NotEqual(t, "split-shift", r.ID)

	id, err := s.ActiveID()
	require.NoError(t, err)
	assert.Equal(t, r.ID, id)
}

func TestUpdateActive(t *testing.T) {
	s := setupTestStore(t)

	updated, err := s.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
		return routine.Shift(r, 15), nil
	})
	require.NoError(t, err)

	loaded, err := s.ActiveRoutine()
	require.NoError(t, err)
	assert.Equal(t, *updated, *loaded)
	assert.Equal(t, "07:15", loaded.Blocks[0].Start.String())
}

func TestSettingsDefaults(t *testing.T) {
	s := setupTestStore(t)

	settings, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
	assert.Equal(t, "10:00", settings.VitaminDTime.String())
	assert.True(t, settings.VitaminDEnabled)
	assert.Equal(t, 0.5, settings.Volume)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	settings := DefaultSettings()
	settings.VitaminDTime = routine.At(11, 30)
	settings.Volume = 0.8
	settings.TickInterval = 15 * time.Second
	require.NoError(t, s.SaveSettings(settings))

	loaded, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestSettingsPartialFileKeepsDefaults(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, os.WriteFile(s.SettingsPath(), []byte("volume: 0.2\n"), 0644))

	loaded, err := s.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.2, loaded.Volume)
	assert.Equal(t, 10*time.Second, loaded.TickInterval)
}

func TestSettingsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"volume too loud", func(s *Settings) { s.Volume = 1.5 }},
		{"negative volume", func(s *Settings) { s.Volume = -0.1 }},
		{"vitamin time out of range", func(s *Settings) { s.VitaminDTime = routine.TimeOfDay(1440) }},
		{"zero interval", func(s *Settings) { s.TickInterval = 0 }},
		{"interval skips minutes", func(s *Settings) { s.TickInterval = 7 * time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(&settings)
			assert.ErrorIs(t, ValidateSettings(settings), ErrInvalidSettings)
		})
	}
}

func TestLoadSettingsRejectsGarbage(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, os.WriteFile(s.SettingsPath(), []byte("vitamin_d_time: noon\n"), 0644))

	settings, err := s.LoadSettings()
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestEngineSource(t *testing.T) {
	s := setupTestStore(t)
	src := EngineSource{Store: s}

	r, err := src.ActiveRoutine()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, routine.DefaultRoutineID, r.ID)

	es, err := src.EngineSettings()
	require.NoError(t, err)
	assert.True(t, es.VitaminDEnabled)
	assert.Equal(t, routine.At(10, 0), es.VitaminDTime)
}
