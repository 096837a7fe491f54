package routine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ErrSubtaskNotFound is returned when a subtask id does not match.
var ErrSubtaskNotFound = errors.New("subtask not found")

// WithSubtask appends an open subtask. Blank text is ignored.
func (b TimeBlock) WithSubtask(text string) TimeBlock {
	text = strings.TrimSpace(text)
	if text == "" {
		return b
	}
	b.Subtasks = append(append([]Subtask(nil), b.Subtasks...), Subtask{ID: uuid.NewString(), Text: text})
	return b
}

// ToggleSubtask flips the done flag of the subtask with the given id.
func (b TimeBlock) ToggleSubtask(id string) (TimeBlock, error) {
	i := b.subtaskIndex(id)
	if i < 0 {
		return b, fmt.Errorf("%w: %s", ErrSubtaskNotFound, id)
	}
	b.Subtasks = append([]Subtask(nil), b.Subtasks...)
	b.Subtasks[i].Done = !b.Subtasks[i].Done
	return b, nil
}

// WithoutSubtask removes the subtask with the given id.
func (b TimeBlock) WithoutSubtask(id string) (TimeBlock, error) {
	i := b.subtaskIndex(id)
	if i < 0 {
		return b, fmt.Errorf("%w: %s", ErrSubtaskNotFound, id)
	}
	out := make([]Subtask, 0, len(b.Subtasks)-1)
	out = append(out, b.Subtasks[:i]...)
	b.Subtasks = append(out, b.Subtasks[i+1:]...)
	return b, nil
}

// SubtaskPercent returns the rounded share of subtasks marked done, or 0
// when the block has none.
func (b TimeBlock) SubtaskPercent() int {
	if len(b.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range b.Subtasks {
		if st.Done {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(b.Subtasks)) * 100))
}

// subtaskIndex matches a full id or a unique prefix of one.
func (b TimeBlock) subtaskIndex(id string) int {
	if id == "" {
		return -1
	}
	found := -1
	for i, st := range b.Subtasks {
		if st.ID == id {
			return i
		}
		if strings.HasPrefix(st.ID, id) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}
