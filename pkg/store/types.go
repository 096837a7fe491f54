package store

import (
	"errors"
	"time"

	"github.com/stefanpenner/tempo/pkg/routine"
)

var (
	// ErrNotFound is returned when a routine or goal does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating something that already exists.
	ErrExists = errors.New("already exists")
	// ErrInvalidSettings is returned when settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Settings are the user preferences stored in settings.yaml. Mute is a
// session toggle and is never persisted.
type Settings struct {
	VitaminDTime    routine.TimeOfDay `yaml:"vitamin_d_time" json:"vitaminDTime" validate:"timeofday"`
	VitaminDEnabled bool              `yaml:"vitamin_d_enabled" json:"vitaminDEnabled"`
	Volume          float64           `yaml:"volume" json:"volume" validate:"gte=0,lte=1"`
	AlarmSound      string            `yaml:"alarm_sound,omitempty" json:"alarmSound,omitempty"`
	TickInterval    time.Duration     `yaml:"tick_interval" json:"tickInterval" validate:"gt=0"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		VitaminDTime:    routine.At(10, 0),
		VitaminDEnabled: true,
		Volume:          0.5,
		TickInterval:    10 * time.Second,
	}
}

// GoalPeriod is the horizon a goal is tracked over.
type GoalPeriod string

const (
	PeriodDaily   GoalPeriod = "daily"
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
	PeriodYearly  GoalPeriod = "yearly"
)

// GoalPeriods lists the periods in display order.
var GoalPeriods = []GoalPeriod{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

// Goal is an entry in goals.yaml.
type Goal struct {
	ID        string     `yaml:"id" json:"id" validate:"required"`
	Text      string     `yaml:"text" json:"text" validate:"required"`
	Period    GoalPeriod `yaml:"period" json:"period" validate:"oneof=daily weekly monthly yearly"`
	Completed bool       `yaml:"completed" json:"completed"`
	Category  string     `yaml:"category,omitempty" json:"category,omitempty"`
}

// selection is the content of state.yaml.
type selection struct {
	Active string `yaml:"active"`
}

type goalFile struct {
	Goals []Goal `yaml:"goals"`
}
