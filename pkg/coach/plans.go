package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// ErrInvalidPlan is returned when a generated plan cannot be used.
var ErrInvalidPlan = errors.New("invalid plan")

// Levels lists the accepted workout levels.
var Levels = []string{"beginner", "intermediate", "advanced"}

var validate = validator.New()

// Exercise is one entry of a workout plan.
type Exercise struct {
	Name  string `json:"name" validate:"required"`
	Sets  string `json:"sets" validate:"required"`
	Reps  string `json:"reps" validate:"required"`
	Notes string `json:"notes,omitempty"`
}

// WorkoutPlan is a generated training session.
type WorkoutPlan struct {
	Name         string     `json:"name" validate:"required"`
	TargetMuscle string     `json:"targetMuscle"`
	Exercises    []Exercise `json:"exercises" validate:"min=1,dive"`
}

// Block turns the plan into a personal block starting at start, one subtask
// per exercise.
func (p WorkoutPlan) Block(start routine.TimeOfDay) routine.TimeBlock {
	b := routine.NewBlock(start, routine.KindPersonal, "Workout: "+p.Name)
	for _, ex := range p.Exercises {
		b = b.WithSubtask(fmt.Sprintf("%s %sx%s", ex.Name, ex.Sets, ex.Reps))
	}
	b.Note = p.Markdown()
	return b
}

// Markdown renders the plan as a numbered list.
func (p WorkoutPlan) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", p.Name)
	if p.TargetMuscle != "" {
		fmt.Fprintf(&sb, "Target: %s\n\n", p.TargetMuscle)
	}
	for i, ex := range p.Exercises {
		fmt.Fprintf(&sb, "%d. **%s**: %s sets of %s", i+1, ex.Name, ex.Sets, ex.Reps)
		if ex.Notes != "" {
			fmt.Fprintf(&sb, " (%s)", ex.Notes)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Workout asks for an exercise routine for target with the given equipment
// and level.
func (c *Coach) Workout(ctx context.Context, target, equipment, level string) (WorkoutPlan, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return WorkoutPlan{}, fmt.Errorf("%w: workout target is empty", ErrInvalidPlan)
	}
	if !validLevel(level) {
		return WorkoutPlan{}, fmt.Errorf("%w: level %q (want one of %s)", ErrInvalidPlan, level, strings.Join(Levels, ", "))
	}
	if equipment == "" {
		equipment = "bodyweight"
	}

	prompt := fmt.Sprintf("Act as an expert personal trainer. Create an exercise routine in JSON for:\n"+
		"- Goal/muscle: %s\n- Available equipment: %s\n- Level: %s\n"+
		"Return ONLY a valid JSON object with this structure (no markdown): "+
		`{"name": "Creative routine name", "targetMuscle": %q, "exercises": [{"name": "Exercise", "sets": "Sets", "reps": "Reps", "notes": "Short form tip"}]}`,
		target, equipment, level, target)

	reply, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return WorkoutPlan{}, err
	}
	return ParseWorkout(reply)
}

// ParseWorkout decodes a workout plan reply, tolerating code fences.
func ParseWorkout(reply string) (WorkoutPlan, error) {
	var p WorkoutPlan
	if err := json.Unmarshal([]byte(stripFences(reply)), &p); err != nil {
		return WorkoutPlan{}, fmt.Errorf("%w: workout is not a JSON object: %v", ErrInvalidPlan, err)
	}
	if err := validate.Struct(p); err != nil {
		return WorkoutPlan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return p, nil
}

// Meditation asks for a guided meditation script for the occasion, sized
// to roughly minutes long.
func (c *Coach) Meditation(ctx context.Context, occasion string, minutes int) (string, error) {
	occasion = strings.TrimSpace(occasion)
	if occasion == "" {
		return "", fmt.Errorf("%w: meditation occasion is empty", ErrInvalidPlan)
	}
	if minutes <= 0 {
		return "", fmt.Errorf("%w: meditation length %d minutes", ErrInvalidPlan, minutes)
	}

	prompt := fmt.Sprintf("Act as an experienced meditation guide. Write a detailed, relaxing guided meditation script.\n\n"+
		"Context/goal: %s\nEstimated length: %d minutes\n\n"+
		"Required structure:\n1. Opening: posture and first breaths.\n"+
		"2. Body: a visualization or technique specific to %q.\n"+
		"3. Closing: return to awareness and a final affirmation.\n\n"+
		"Use a calm, gentle tone. Format with clear paragraphs and suggested pauses [Pause].",
		occasion, minutes, occasion)

	return c.gen.Generate(ctx, prompt)
}

// MeditationBlock wraps a script into a sacred block starting at start.
func MeditationBlock(start routine.TimeOfDay, occasion, script string) routine.TimeBlock {
	b := routine.NewBlock(start, routine.KindSacred, "Meditation: "+strings.TrimSpace(occasion))
	b.Note = script
	return b
}

func validLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}
