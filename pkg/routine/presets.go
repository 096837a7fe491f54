package routine

import "fmt"

// DefaultRoutineID is the preset selected when no other routine remains.
const DefaultRoutineID = "morning-productive"

type presetBlock struct {
	time     string
	activity string
	kind     Kind
	lock     bool
	location string
}

type preset struct {
	id, name, description string
	blocks                []presetBlock
}

var presets = []preset{
	{
		id:          DefaultRoutineID,
		name:        "Morning Productive (Early Riser)",
		description: "For people with the most energy at the start of the day.",
		blocks: []presetBlock{
			{"07:00", "Wake up and self care", KindPersonal, false, ""},
			{"07:30", "Family breakfast (no screens)", KindSacred, true, ""},
			{"08:30", "Deep focus (block 1/4)", KindWork, false, ""},
			{"10:00", "Active micro-break", KindBreak, false, ""},
			{"10:15", "Deep focus (block 2/4)", KindWork, false, ""},
			{"12:00", "Morning wrap-up", KindWork, false, ""},
			{"13:00", "Lunch and rest", KindSacred, true, ""},
			{"14:30", "Deep focus (block 3/4)", KindWork, false, ""},
			{"17:00", "Deep focus (block 4/4)", KindWork, false, ""},
			{"18:00", "End of workday", KindPersonal, false, ""},
			{"20:30", "Quiet evening", KindSacred, false, ""},
		},
	},
	{
		id:          "afternoon-focus",
		name:        "Afternoon Focus (Night Owl)",
		description: "Slow mornings, intense afternoons.",
		blocks: []presetBlock{
			{"08:00", "Wake up and family time", KindSacred, false, ""},
			{"09:00", "House chores", KindPersonal, false, ""},
			{"10:30", "Email and light tasks", KindWork, false, ""},
			{"12:00", "Family lunch", KindSacred, true, ""},
			{"13:30", "Siesta", KindPersonal, false, ""},
			{"15:00", "Deep focus (block 1/2)", KindWork, false, ""},
			{"17:30", "Micro-break", KindBreak, false, ""},
			{"18:00", "Deep focus (block 2/2)", KindWork, false, ""},
			{"20:00", "Wrap-up and dinner", KindSacred, true, ""},
		},
	},
	{
		id:          "split-shift",
		name:        "Split Shift",
		description: "Balance spread across the whole day.",
		blocks: []presetBlock{
			{"07:00", "Wake up and exercise", KindPersonal, false, ""},
			{"08:30", "Deep focus (block 1/2)", KindWork, false, ""},
			{"12:00", "Wrap-up and lunch", KindPersonal, false, ""},
			{"13:00", "Sacred family block", KindSacred, true, ""},
			{"16:00", "Deep focus (block 2/2)", KindWork, false, ""},
			{"19:00", "End of workday", KindPersonal, false, ""},
			{"20:00", "Couple time", KindSacred, true, ""},
		},
	},
	{
		id:          "personal-agenda",
		name:        "Personal Agenda",
		description: "Focus, meditation and mindful check-ins.",
		blocks: []presetBlock{
			{"05:30", "Wake up and morning ritual", KindPersonal, false, ""},
			{"07:30", "Meditation: future design", KindSacred, true, "Meditation space"},
			{"14:00", "Mindful check-in (3 second pause)", KindBreak, false, ""},
			{"17:45", "Arrive home, shower", KindPersonal, false, ""},
			{"18:15", "Personal study (1 hour)", KindWork, false, ""},
			{"21:15", "Screens off, prepare for sleep", KindSacred, true, ""},
			{"23:00", "Night reflection", KindPersonal, false, ""},
		},
	},
	{
		id:          "the-change",
		name:        "The Change",
		description: "A routine for personal transformation and discipline.",
		blocks: []presetBlock{
			{"05:30", "Wake up and morning ritual", KindPersonal, false, ""},
			{"07:30", "Meditation: future design", KindSacred, true, "Meditation space"},
			{"14:00", "Mindful check-in (3 second pause)", KindBreak, false, ""},
			{"17:45", "Arrive home, shower", KindPersonal, false, ""},
			{"18:15", "Personal study (1 hour)", KindWork, false, ""},
			{"21:15", "Screens off, prepare for sleep", KindSacred, true, ""},
			{"23:00", "Night reflection (patterns and new self)", KindPersonal, false, ""},
		},
	},
}

// Presets returns fresh copies of the built-in routines, in display order.
func Presets() []Routine {
	out := make([]Routine, 0, len(presets))
	for _, p := range presets {
		r := Routine{ID: p.id, Name: p.name, Description: p.description}
		for i, pb := range p.blocks {
			r.Blocks = append(r.Blocks, TimeBlock{
				ID:           fmt.Sprintf("%s-%02d", p.id, i+1),
				Start:        MustParseTimeOfDay(pb.time),
				Activity:     pb.activity,
				Kind:         pb.kind,
				AlarmEnabled: true,
				EnforceLock:  pb.lock,
				Location:     pb.location,
			})
		}
		out = append(out, r)
	}
	return out
}

// DefaultRoutine returns the fallback preset.
func DefaultRoutine() Routine {
	return Presets()[0]
}
