package routine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrBlockNotFound is returned when an edit names a block id the routine
// does not contain.
var ErrBlockNotFound = errors.New("block not found")

// Kind classifies a block's notification and lock behavior.
type Kind string

const (
	KindWork     Kind = "work"
	KindSacred   Kind = "sacred"
	KindPersonal Kind = "personal"
	KindBreak    Kind = "break"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindWork, KindSacred, KindPersonal, KindBreak}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown block type %q", ErrInvalidScheduleData, s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindWork, KindSacred, KindPersonal, KindBreak:
		return true
	default:
		return false
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheduleData, err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Subtask is a checklist item attached to a block.
type Subtask struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
	Done bool   `yaml:"done,omitempty" json:"done,omitempty"`
}

// TimeBlock is one scheduled activity that recurs daily.
type TimeBlock struct {
	ID           string    `yaml:"id" json:"id"`
	Start        TimeOfDay `yaml:"time" json:"time"`
	Activity     string    `yaml:"activity" json:"activity"`
	Kind         Kind      `yaml:"type" json:"type"`
	AlarmEnabled bool      `yaml:"alarm" json:"alarmEnabled"`
	EnforceLock  bool      `yaml:"lock,omitempty" json:"enforceLock,omitempty"`

	// Display-only metadata
	Location   string    `yaml:"location,omitempty" json:"location,omitempty"`
	Note       string    `yaml:"note,omitempty" json:"note,omitempty"`
	Color      string    `yaml:"color,omitempty" json:"color,omitempty"`
	Subtasks   []Subtask `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
	Suggestion string    `yaml:"suggestion,omitempty" json:"aiSuggestion,omitempty"`
}

// NewBlock returns a block with a fresh id and the alarm enabled.
func NewBlock(start TimeOfDay, kind Kind, activity string) TimeBlock {
	return TimeBlock{
		ID:           uuid.NewString(),
		Start:        start,
		Activity:     activity,
		Kind:         kind,
		AlarmEnabled: true,
	}
}

// Locks reports whether entering the block engages the screen lock.
func (b TimeBlock) Locks() bool {
	return b.Kind == KindSacred && b.EnforceLock
}

// UnmarshalYAML defaults AlarmEnabled to true when the field is absent.
func (b *TimeBlock) UnmarshalYAML(value *yaml.Node) error {
	type rawBlock TimeBlock
	raw := rawBlock{AlarmEnabled: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*b = TimeBlock(raw)
	return nil
}

// UnmarshalJSON defaults AlarmEnabled to true when the field is absent.
func (b *TimeBlock) UnmarshalJSON(data []byte) error {
	type rawBlock TimeBlock
	raw := rawBlock{AlarmEnabled: true}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = TimeBlock(raw)
	return nil
}

// Routine is a named daily schedule template. Blocks are kept sorted by
// start time; edits go through the With*/Shift* functions which return a
// new Routine.
type Routine struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"-" json:"description"`
	Blocks      []TimeBlock `yaml:"blocks" json:"blocks"`
}

// Clone returns a deep copy of r.
func (r Routine) Clone() Routine {
	out := r
	out.Blocks = make([]TimeBlock, len(r.Blocks))
	for i, b := range r.Blocks {
		if b.Subtasks != nil {
			b.Subtasks = append([]Subtask(nil), b.Subtasks...)
		}
		out.Blocks[i] = b
	}
	return out
}

// Block returns the block with the given id.
func (r Routine) Block(id string) (TimeBlock, int, bool) {
	for i, b := range r.Blocks {
		if b.ID == id {
			return b, i, true
		}
	}
	return TimeBlock{}, -1, false
}

// WithBlock adds b, or replaces the block with the same id, and re-sorts.
func (r Routine) WithBlock(b TimeBlock) Routine {
	out := r.Clone()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, idx, ok := out.Block(b.ID); ok {
		out.Blocks[idx] = b
	} else {
		out.Blocks = append(out.Blocks, b)
	}
	SortBlocks(out.Blocks)
	return out
}

// WithoutBlock removes the block with the given id.
func (r Routine) WithoutBlock(id string) (Routine, error) {
	if _, _, ok := r.Block(id); !ok {
		return r, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	out := r.Clone()
	blocks := out.Blocks[:0]
	for _, b := range out.Blocks {
		if b.ID != id {
			blocks = append(blocks, b)
		}
	}
	out.Blocks = blocks
	return out, nil
}

// Validate checks the invariants the resolver relies on.
func (r Routine) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: routine has no id", ErrInvalidScheduleData)
	}
	seen := make(map[string]bool, len(r.Blocks))
	for i, b := range r.Blocks {
		if b.ID == "" {
			return fmt.Errorf("%w: block %d has no id", ErrInvalidScheduleData, i)
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicate block id %s", ErrInvalidScheduleData, b.ID)
		}
		seen[b.ID] = true
		if !b.Start.Valid() {
			return fmt.Errorf("%w: block %s starts at %d", ErrInvalidScheduleData, b.ID, int(b.Start))
		}
		if !b.Kind.Valid() {
			return fmt.Errorf("%w: block %s has type %q", ErrInvalidScheduleData, b.ID, b.Kind)
		}
		if i > 0 && r.Blocks[i-1].Start > b.Start {
			return fmt.Errorf("%w: blocks out of order at %s", ErrInvalidScheduleData, b.Start)
		}
	}
	return nil
}

// SortBlocks orders blocks ascending by start time, keeping the relative
// order of blocks that share a start time.
func SortBlocks(blocks []TimeBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})
}
