package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// TimelineItem is one block of the active routine as the timeline shows it.
type TimelineItem struct {
	Block    routine.TimeBlock
	End      routine.TimeOfDay
	Status   routine.Status
	Progress float64
	IsNext   bool
}

// BuildTimeline resolves r at now and flattens it for rendering.
func BuildTimeline(r *routine.Routine, now time.Time) []TimelineItem {
	if r == nil {
		return nil
	}
	res := routine.Resolve(r, now)
	items := make([]TimelineItem, 0, len(r.Blocks))
	for i, b := range r.Blocks {
		_, end := routine.Window(r.Blocks, i)
		items = append(items, TimelineItem{
			Block:    b,
			End:      end,
			Status:   res.Blocks[i].Status,
			Progress: res.Blocks[i].Progress,
			IsNext:   i == res.NextUpcoming,
		})
	}
	return items
}

// CurrentIndex returns the index of the active item, or -1.
func CurrentIndex(items []TimelineItem) int {
	for i, it := range items {
		if it.Status == routine.StatusActive {
			return i
		}
	}
	return -1
}

// ParseBlockInput parses "HH:MM type activity..." from the add-block prompt.
// The type may be omitted, in which case the block is work.
func ParseBlockInput(s string) (routine.TimeBlock, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return routine.TimeBlock{}, fmt.Errorf("expected HH:MM [type] activity")
	}
	start, err := routine.ParseTimeOfDay(fields[0])
	if err != nil {
		return routine.TimeBlock{}, err
	}

	kind := routine.KindWork
	rest := fields[1:]
	if k, err := routine.ParseKind(strings.ToLower(rest[0])); err == nil && len(rest) > 1 {
		kind = k
		rest = rest[1:]
	}
	b := routine.NewBlock(start, kind, strings.Join(rest, " "))
	b.EnforceLock = kind == routine.KindSacred
	return b, nil
}

// progressBar renders a fixed-width bar for a fraction in [0, 1].
func progressBar(fraction float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := int(fraction*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return ProgressFullStyle.Render(strings.Repeat("━", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("─", width-filled))
}
