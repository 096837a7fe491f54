package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// Store manages the filesystem-backed routine data.
type Store struct {
	Root string // e.g., ~/.local/share/tempo
}

// NewStore creates a Store rooted at the given directory. It creates the
// directory structure if it doesn't exist and seeds the built-in presets on
// first use.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "routines"), 0755); err != nil {
		return nil, fmt.Errorf("creating routines directory: %w", err)
	}
	s := &Store{Root: root}

	ids, err := s.routineIDs()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if err := s.seedPresets(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RoutinesDir returns the path to the routines directory.
func (s *Store) RoutinesDir() string {
	return filepath.Join(s.Root, "routines")
}

// RoutinePath returns the file backing the routine with the given id.
func (s *Store) RoutinePath(id string) string {
	return filepath.Join(s.RoutinesDir(), id+".md")
}

// SettingsPath returns the path to settings.yaml.
func (s *Store) SettingsPath() string {
	return filepath.Join(s.Root, "settings.yaml")
}

// StatePath returns the path to state.yaml.
func (s *Store) StatePath() string {
	return filepath.Join(s.Root, "state.yaml")
}

// GoalsPath returns the path to goals.yaml.
func (s *Store) GoalsPath() string {
	return filepath.Join(s.Root, "goals.yaml")
}

// JournalPath returns the path to the journal database.
func (s *Store) JournalPath() string {
	return filepath.Join(s.Root, "journal.db")
}

// LogPath returns the path of the log file used while the TUI owns the terminal.
func (s *Store) LogPath() string {
	return filepath.Join(s.Root, "tempo.log")
}

// LoadRoutine reads a single routine by id.
func (s *Store) LoadRoutine(id string) (*routine.Routine, error) {
	if !validID(id) {
		return nil, fmt.Errorf("routine %q: %w", id, ErrNotFound)
	}
	data, err := os.ReadFile(s.RoutinePath(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading routine %s: %w", id, err)
	}

	r, err := ParseRoutine(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing routine %s: %w", id, err)
	}
	r.ID = id
	return r, nil
}

// ListRoutines loads every routine, sorted by name. Routines that fail to
// parse are reported in the returned error but do not hide the others.
func (s *Store) ListRoutines() ([]*routine.Routine, error) {
	ids, err := s.routineIDs()
	if err != nil {
		return nil, err
	}

	var routines []*routine.Routine
	var errs []error
	for _, id := range ids {
		r, err := s.LoadRoutine(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		routines = append(routines, r)
	}
	sort.SliceStable(routines, func(i, j int) bool {
		return routines[i].Name < routines[j].Name
	})
	return routines, errors.Join(errs...)
}

func (s *Store) routineIDs() ([]string, error) {
	entries, err := os.ReadDir(s.RoutinesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading routines directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".md"))
	}
	return ids, nil
}

// SaveRoutine validates and writes a routine to disk, replacing the whole
// file in one rename so readers never observe a partial block list.
func (s *Store) SaveRoutine(r routine.Routine) error {
	r = r.Clone()
	routine.SortBlocks(r.Blocks)
	if !validID(r.ID) {
		return fmt.Errorf("%w: routine id %q", routine.ErrInvalidScheduleData, r.ID)
	}
	if err := r.Validate(); err != nil {
		return err
	}

	content, err := SerializeRoutine(r)
	if err != nil {
		return fmt.Errorf("serializing routine: %w", err)
	}
	return writeFileAtomic(s.RoutinePath(r.ID), []byte(content))
}

// CreateRoutine saves a new routine and fails if the id is taken.
func (s *Store) CreateRoutine(r routine.Routine) error {
	if _, err := os.Stat(s.RoutinePath(r.ID)); err == nil {
		return fmt.Errorf("routine %s: %w", r.ID, ErrExists)
	}
	return s.SaveRoutine(r)
}

// DeleteRoutine removes a routine. If it was the active one, the selector
// moves to the first remaining routine, or, when none remain, the presets are
// restored and the default preset becomes active. It returns the id that is
// active afterwards.
func (s *Store) DeleteRoutine(id string) (string, error) {
	path := s.RoutinePath(id)
	if _, err := os.Stat(path); !validID(id) || os.IsNotExist(err) {
		return "", fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}

	active, err := s.ActiveID()
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("deleting routine %s: %w", id, err)
	}
	if active != id {
		return active, nil
	}
	return s.ensureActive()
}

// ensureActive repairs the active selector so it resolves to a routine.
func (s *Store) ensureActive() (string, error) {
	ids, err := s.routineIDs()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		if err := s.seedPresets(); err != nil {
			return "", err
		}
		return routine.DefaultRoutineID, s.SetActive(routine.DefaultRoutineID)
	}

	routines, _ := s.ListRoutines()
	next := ids[0]
	if len(routines) > 0 {
		next = routines[0].ID
	}
	return next, s.SetActive(next)
}

func (s *Store) seedPresets() error {
	for _, p := range routine.Presets() {
		if err := s.SaveRoutine(p); err != nil {
			return fmt.Errorf("seeding preset %s: %w", p.ID, err)
		}
	}
	return nil
}

// ActiveID returns the id of the selected routine, defaulting to the
// default preset when nothing has been selected yet.
func (s *Store) ActiveID() (string, error) {
	data, err := os.ReadFile(s.StatePath())
	if os.IsNotExist(err) {
		return routine.DefaultRoutineID, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading state.yaml: %w", err)
	}

	var sel selection
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return "", fmt.Errorf("parsing state.yaml: %w", err)
	}
	if sel.Active == "" {
		return routine.DefaultRoutineID, nil
	}
	return sel.Active, nil
}

// SetActive selects the routine the engine follows.
func (s *Store) SetActive(id string) error {
	if _, err := os.Stat(s.RoutinePath(id)); !validID(id) || os.IsNotExist(err) {
		return fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	data, err := yaml.Marshal(selection{Active: id})
	if err != nil {
		return fmt.Errorf("serializing state.yaml: %w", err)
	}
	return writeFileAtomic(s.StatePath(), data)
}

// ActiveRoutine loads the selected routine. A selector that points at a
// missing file is repaired first.
func (s *Store) ActiveRoutine() (*routine.Routine, error) {
	id, err := s.ActiveID()
	if err != nil {
		return nil, err
	}
	r, err := s.LoadRoutine(id)
	if errors.Is(err, ErrNotFound) {
		if id, err = s.ensureActive(); err != nil {
			return nil, err
		}
		return s.LoadRoutine(id)
	}
	return r, err
}

// UpdateActive applies fn to the active routine and saves the result.
func (s *Store) UpdateActive(fn func(routine.Routine) (routine.Routine, error)) (*routine.Routine, error) {
	r, err := s.ActiveRoutine()
	if err != nil {
		return nil, err
	}
	next, err := fn(*r)
	if err != nil {
		return nil, err
	}
	next.ID = r.ID
	if err := s.SaveRoutine(next); err != nil {
		return nil, err
	}
	return &next, nil
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp.Name(), path)
}
