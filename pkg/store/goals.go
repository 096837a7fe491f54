package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadGoals reads goals.yaml.
func (s *Store) LoadGoals() ([]Goal, error) {
	data, err := os.ReadFile(s.GoalsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading goals.yaml: %w", err)
	}

	var f goalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing goals.yaml: %w", err)
	}
	return f.Goals, nil
}

func (s *Store) saveGoals(goals []Goal) error {
	data, err := yaml.Marshal(goalFile{Goals: goals})
	if err != nil {
		return fmt.Errorf("serializing goals.yaml: %w", err)
	}
	return writeFileAtomic(s.GoalsPath(), data)
}

// AddGoal appends a goal for the given period.
func (s *Store) AddGoal(text string, period GoalPeriod, category string) (Goal, error) {
	goal := Goal{
		ID:       uuid.NewString(),
		Text:     strings.TrimSpace(text),
		Period:   period,
		Category: category,
	}
	if err := validate.Struct(goal); err != nil {
		return Goal{}, fmt.Errorf("invalid goal: %w", err)
	}

	goals, err := s.LoadGoals()
	if err != nil {
		return Goal{}, err
	}
	if err := s.saveGoals(append(goals, goal)); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

// ToggleGoal flips a goal's completion. id may be a unique prefix.
func (s *Store) ToggleGoal(id string) (Goal, error) {
	goals, err := s.LoadGoals()
	if err != nil {
		return Goal{}, err
	}
	i, err := findGoal(goals, id)
	if err != nil {
		return Goal{}, err
	}
	goals[i].Completed = !goals[i].Completed
	if err := s.saveGoals(goals); err != nil {
		return Goal{}, err
	}
	return goals[i], nil
}

// DeleteGoal removes a goal. id may be a unique prefix.
func (s *Store) DeleteGoal(id string) error {
	goals, err := s.LoadGoals()
	if err != nil {
		return err
	}
	i, err := findGoal(goals, id)
	if err != nil {
		return err
	}
	return s.saveGoals(append(goals[:i], goals[i+1:]...))
}

// GoalsByPeriod groups goals by period, keeping file order inside a group.
func GoalsByPeriod(goals []Goal) map[GoalPeriod][]Goal {
	out := make(map[GoalPeriod][]Goal, len(GoalPeriods))
	for _, g := range goals {
		out[g.Period] = append(out[g.Period], g)
	}
	return out
}

func findGoal(goals []Goal, id string) (int, error) {
	found := -1
	for i, g := range goals {
		if g.ID == id {
			return i, nil
		}
		if id != "" && strings.HasPrefix(g.ID, id) {
			if found != -1 {
				return -1, fmt.Errorf("goal prefix %s is ambiguous", id)
			}
			found = i
		}
	}
	if found == -1 {
		return -1, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return found, nil
}
