package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/stefanpenner/tempo/pkg/coach"
	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/focus"
	"github.com/stefanpenner/tempo/pkg/routine"
	"github.com/stefanpenner/tempo/pkg/store"
)

// FileChangedMsg is sent when the file watcher detects changes.
type FileChangedMsg struct{}

// EditorFinishedMsg is sent when $EDITOR returns.
type EditorFinishedMsg struct {
	Err error
}

type tickMsg time.Time

// focusTickMsg carries the timer generation that scheduled it, so a paused
// and restarted timer never runs two tick chains.
type focusTickMsg struct {
	gen int
}

type evaluatedMsg struct {
	events []engine.Event
	err    error
}

type tipMsg struct {
	blockID string
	tip     string
	err     error
}

// Model is the Bubble Tea model for the routine timeline.
type Model struct {
	store    *store.Store
	engine   *engine.Engine
	coach    *coach.Coach
	logger   *zap.Logger
	interval time.Duration

	keys        KeyMap
	width       int
	height      int
	routine     *routine.Routine
	routines    []*routine.Routine
	items       []TimelineItem
	now         time.Time
	cursor      int
	focusedPane int // 0 = timeline, 1 = details
	notesScroll int
	muted       bool
	followNow   bool

	// Modal state
	showHelpModal     bool
	showDeleteConfirm bool
	deleteTarget      routine.TimeBlock
	showPicker        bool
	pickerCursor      int

	// Input mode (for adding blocks, or checklist items when subtaskFor is set)
	isInputMode bool
	textInput   textinput.Model
	subtaskFor  string

	focus    focus.Timer
	focusGen int

	// Inline edit mode
	isEditing   bool
	noteEditor  textarea.Model
	editBlockID string

	tipPending string

	// Status message
	statusMsg      string
	statusSeverity engine.Severity
	statusTimeout  time.Time

	// Cached glamour renderer (expensive to create)
	glamourRenderer *glamour.TermRenderer
	glamourWidth    int
}

// Option configures a Model.
type Option func(*Model)

// WithCoach enables AI tips.
func WithCoach(c *coach.Coach) Option {
	return func(m *Model) { m.coach = c }
}

// WithLogger sets the logger. The TUI owns the terminal, so this should not
// write to stdout or stderr.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithInterval sets the evaluation interval. Intervals that could skip a
// minute are ignored.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if engine.ValidateInterval(d) == nil {
			m.interval = d
		}
	}
}

const blockPlaceholder = "14:00 work Deep focus"

// NewModel creates a new TUI model.
func NewModel(s *store.Store, e *engine.Engine, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = blockPlaceholder
	ti.CharLimit = 80

	m := Model{
		store:     s,
		engine:    e,
		logger:    zap.NewNop(),
		interval:  engine.DefaultInterval,
		keys:      DefaultKeyMap(),
		textInput: ti,
		followNow: true,
		focus:     focus.New(focus.DefaultFocus, focus.DefaultBreak),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.now = e.Now()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.evaluate())
}

// evaluate runs one engine tick off the update loop.
func (m Model) evaluate() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		events, err := eng.Tick(context.Background())
		return evaluatedMsg{events: events, err: err}
	}
}

// scheduleTick waits for the next interval boundary on the wall clock, so
// evaluation latency never accumulates into drift.
func (m Model) scheduleTick() tea.Cmd {
	return tea.Every(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func focusTick(gen int) tea.Cmd {
	return tea.Every(time.Second, func(time.Time) tea.Msg {
		return focusTickMsg{gen: gen}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		rightWidth := msg.Width - (msg.Width / 3) - 1 - 2
		if rightWidth < 20 {
			rightWidth = 20
		}
		m.getGlamourRenderer(rightWidth)
		if m.isEditing {
			m.sizeEditor()
		}
		m.reload()
		return m, tea.ClearScreen

	case tickMsg:
		return m, m.evaluate()

	case focusTickMsg:
		if msg.gen != m.focusGen || !m.focus.Running {
			return m, nil
		}
		var done bool
		if m.focus, done = m.focus.Advance(m.engine.Now()); done {
			m.setToast(m.focus.Done(), engine.SeveritySuccess)
			return m, nil
		}
		return m, focusTick(m.focusGen)

	case evaluatedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.logger.Warn("tick failed", zap.Error(msg.err))
		}
		for _, ev := range msg.events {
			m.setToast(ev.Message, ev.Severity)
		}
		m.now = m.engine.Now()
		m.reload()
		return m, m.scheduleTick()

	case FileChangedMsg:
		m.reload()
		return m, nil

	case EditorFinishedMsg:
		if msg.Err != nil {
			m.setStatus("Editor error: " + msg.Err.Error())
		}
		m.reload()
		return m, nil

	case tipMsg:
		m.tipPending = ""
		if msg.err != nil {
			m.logger.Warn("tip failed", zap.String("block", msg.blockID), zap.Error(msg.err))
			m.setStatus("Tip failed: " + msg.err.Error())
			return m, nil
		}
		m.updateBlock(msg.blockID, func(b *routine.TimeBlock) { b.Suggestion = msg.tip })
		m.setToast("Tip ready", engine.SeveritySuccess)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) locked() bool {
	return m.engine.State().Lock.Active
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The lock overlay swallows everything but its three exits.
	if m.locked() {
		return m.handleLockKeys(msg)
	}

	if m.isInputMode {
		switch msg.Type {
		case tea.KeyEnter:
			m.isInputMode = false
			m.textInput.Blur()
			if id := m.subtaskFor; id != "" {
				m.subtaskFor = ""
				text := m.textInput.Value()
				m.updateBlock(id, func(b *routine.TimeBlock) { *b = b.WithSubtask(text) })
				return m, nil
			}
			b, err := ParseBlockInput(m.textInput.Value())
			if err != nil {
				m.setStatus("Error: " + err.Error())
				return m, nil
			}
			if _, err := m.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
				return r.WithBlock(b), nil
			}); err != nil {
				m.setStatus("Error: " + err.Error())
				return m, nil
			}
			m.followNow = false
			m.reload()
			m.moveCursorToBlock(b.ID)
			m.setStatus("Added: " + b.Start.String() + " " + b.Activity)
			return m, nil
		case tea.KeyEsc:
			m.isInputMode = false
			m.subtaskFor = ""
			m.textInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
	}

	if m.isEditing {
		return m.handleEditMode(msg)
	}

	if m.showHelpModal {
		if msg.String() == "esc" || msg.String() == "?" || msg.String() == "q" {
			m.showHelpModal = false
		}
		return m, nil
	}

	if m.showDeleteConfirm {
		switch msg.String() {
		case "y", "Y":
			id := m.deleteTarget.ID
			if _, err := m.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
				return r.WithoutBlock(id)
			}); err != nil {
				m.setStatus("Delete failed: " + err.Error())
			} else {
				m.setStatus("Deleted: " + m.deleteTarget.Activity)
			}
			m.showDeleteConfirm = false
			m.reload()
		case "n", "N", "esc":
			m.showDeleteConfirm = false
		}
		return m, nil
	}

	if m.showPicker {
		return m.handlePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = true

	case key.Matches(msg, m.keys.Tab):
		m.focusedPane = 1 - m.focusedPane

	case key.Matches(msg, m.keys.Up):
		if m.focusedPane == 1 {
			if m.notesScroll > 0 {
				m.notesScroll--
			}
		} else if m.cursor > 0 {
			m.cursor--
			m.notesScroll = 0
			m.followNow = false
		}

	case key.Matches(msg, m.keys.Down):
		if m.focusedPane == 1 {
			m.notesScroll++
		} else if m.cursor < len(m.items)-1 {
			m.cursor++
			m.notesScroll = 0
			m.followNow = false
		}

	case key.Matches(msg, m.keys.ToggleAlarm):
		if item, ok := m.selected(); ok {
			on := !item.Block.AlarmEnabled
			m.updateBlock(item.Block.ID, func(b *routine.TimeBlock) { b.AlarmEnabled = on })
			if on {
				m.setStatus("Alarm on: " + item.Block.Activity)
			} else {
				m.setStatus("Alarm off: " + item.Block.Activity)
			}
		}

	case key.Matches(msg, m.keys.ToggleLock):
		if item, ok := m.selected(); ok {
			if item.Block.Kind != routine.KindSacred {
				m.setStatus("Only sacred blocks can lock the screen")
				break
			}
			on := !item.Block.EnforceLock
			m.updateBlock(item.Block.ID, func(b *routine.TimeBlock) { b.EnforceLock = on })
			if on {
				m.setStatus("Lock enforced: " + item.Block.Activity)
			} else {
				m.setStatus("Lock relaxed: " + item.Block.Activity)
			}
		}

	case key.Matches(msg, m.keys.InlineEdit):
		if item, ok := m.selected(); ok {
			m.enterEditMode(item.Block)
			return m, textarea.Blink
		}

	case key.Matches(msg, m.keys.ExternalEdit):
		if m.routine != nil {
			return m, m.openEditor(m.store.RoutinePath(m.routine.ID))
		}

	case key.Matches(msg, m.keys.Add):
		if m.routine == nil {
			m.setStatus("No active routine")
			break
		}
		m.isInputMode = true
		m.textInput.Placeholder = blockPlaceholder
		m.textInput.SetValue("")
		m.textInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok {
			m.deleteTarget = item.Block
			m.showDeleteConfirm = true
		}

	case key.Matches(msg, m.keys.ShiftLater):
		m.shift(15)

	case key.Matches(msg, m.keys.ShiftEarlier):
		m.shift(-15)

	case key.Matches(msg, m.keys.Mute):
		m.muted = !m.muted
		m.engine.SetMuted(m.muted)
		if m.muted {
			m.setStatus("Muted")
		} else {
			m.setStatus("Sound on")
		}

	case key.Matches(msg, m.keys.Routines):
		m.showPicker = true
		m.pickerCursor = 0
		for i, r := range m.routines {
			if m.routine != nil && r.ID == m.routine.ID {
				m.pickerCursor = i
			}
		}

	case key.Matches(msg, m.keys.Tip):
		return m, m.requestTip()

	case key.Matches(msg, m.keys.AddSubtask):
		if item, ok := m.selected(); ok {
			m.subtaskFor = item.Block.ID
			m.isInputMode = true
			m.textInput.Placeholder = "Checklist item"
			m.textInput.SetValue("")
			m.textInput.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.Subtask):
		if item, ok := m.selected(); ok {
			n := int(msg.String()[0] - '1')
			if n >= len(item.Block.Subtasks) {
				m.setStatus(fmt.Sprintf("No checklist item %d", n+1))
				break
			}
			id := item.Block.Subtasks[n].ID
			m.updateBlock(item.Block.ID, func(b *routine.TimeBlock) {
				if toggled, err := b.ToggleSubtask(id); err == nil {
					*b = toggled
				}
			})
		}

	case key.Matches(msg, m.keys.Focus):
		m.focus = m.focus.Toggle(m.engine.Now())
		if !m.focus.Running {
			m.setStatus("Focus paused at " + m.focus.Clock(m.engine.Now()))
			break
		}
		m.focusGen++
		m.setStatus(fmt.Sprintf("%s started: %s", m.focus.Phase, m.focus.Clock(m.engine.Now())))
		return m, focusTick(m.focusGen)

	case key.Matches(msg, m.keys.FocusReset):
		m.focus = m.focus.Reset()
		m.setStatus("Focus timer reset")

	case key.Matches(msg, m.keys.Reload):
		m.reload()
		m.setStatus("Reloaded")
	}

	return m, nil
}

// handleLockKeys handles keys while a sacred block holds the screen.
func (m Model) handleLockKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var action engine.UnlockAction
	switch {
	case key.Matches(msg, m.keys.Late):
		action = engine.UnlockLate
	case key.Matches(msg, m.keys.Skip):
		action = engine.UnlockSkip
	case key.Matches(msg, m.keys.Emergency):
		action = engine.UnlockEmergency
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	default:
		return m, nil
	}

	released, err := m.engine.Unlock(context.Background(), action)
	if err != nil {
		m.setStatus("Unlock failed: " + err.Error())
		return m, nil
	}
	switch action {
	case engine.UnlockLate:
		m.setToast(fmt.Sprintf("Running late: %s and later moved +%dm", released.Activity, engine.LateShift), engine.SeverityWarning)
	case engine.UnlockSkip:
		m.setToast("Skipped: "+released.Activity, engine.SeverityInfo)
	default:
		m.setToast("Emergency unlock", engine.SeverityWarning)
	}
	m.reload()
	return m, nil
}

func (m Model) handlePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "r":
		m.showPicker = false
	case "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case "down", "j":
		if m.pickerCursor < len(m.routines)-1 {
			m.pickerCursor++
		}
	case "enter":
		if m.pickerCursor < len(m.routines) {
			r := m.routines[m.pickerCursor]
			if err := m.store.SetActive(r.ID); err != nil {
				m.setStatus("Error: " + err.Error())
			} else {
				m.setStatus("Active: " + r.Name)
			}
			m.showPicker = false
			m.followNow = true
			m.reload()
		}
	case "d":
		if m.pickerCursor < len(m.routines) {
			r := m.routines[m.pickerCursor]
			next, err := m.store.DeleteRoutine(r.ID)
			if err != nil {
				m.setStatus("Delete failed: " + err.Error())
				break
			}
			m.setStatus(fmt.Sprintf("Deleted %s, now on %s", r.Name, next))
			m.reload()
			if m.pickerCursor >= len(m.routines) {
				m.pickerCursor = len(m.routines) - 1
			}
		}
	}
	return m, nil
}

// handleEditMode handles key messages while editing a block note inline.
func (m Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.saveInlineEdit()
		m.isEditing = false
		m.noteEditor.Blur()
		m.reload()
		m.setStatus("Saved")
		return m, nil

	case msg.Type == tea.KeyCtrlS:
		m.saveInlineEdit()
		m.reload()
		m.setStatus("Saved")
		return m, nil

	case msg.Type == tea.KeyCtrlC:
		m.isEditing = false
		m.noteEditor.Blur()
		m.setStatus("Edit cancelled")
		return m, nil

	default:
		var cmd tea.Cmd
		m.noteEditor, cmd = m.noteEditor.Update(msg)
		return m, cmd
	}
}

// enterEditMode sets up the textarea for inline editing of a block's note.
func (m *Model) enterEditMode(b routine.TimeBlock) {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.SetValue(b.Note)
	ta.Focus()

	m.isEditing = true
	m.noteEditor = ta
	m.editBlockID = b.ID
	m.focusedPane = 1
	m.sizeEditor()
}

func (m *Model) sizeEditor() {
	rightWidth := m.width - (m.width / 3) - 1
	if rightWidth < 20 {
		rightWidth = 20
	}
	editorHeight := m.height - 5 - 4 // chrome plus block header
	if editorHeight < 3 {
		editorHeight = 3
	}
	m.noteEditor.SetWidth(rightWidth)
	m.noteEditor.SetHeight(editorHeight)
}

func (m *Model) saveInlineEdit() {
	note := m.noteEditor.Value()
	m.updateBlock(m.editBlockID, func(b *routine.TimeBlock) { b.Note = note })
}

// updateBlock applies fn to one block of the active routine and saves it.
func (m *Model) updateBlock(id string, fn func(*routine.TimeBlock)) {
	_, err := m.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
		b, _, ok := r.Block(id)
		if !ok {
			return r, fmt.Errorf("%w: %s", routine.ErrBlockNotFound, id)
		}
		fn(&b)
		return r.WithBlock(b), nil
	})
	if err != nil {
		m.setStatus("Save error: " + err.Error())
		return
	}
	m.reload()
}

func (m *Model) shift(delta int) {
	if _, err := m.engine.Shift(context.Background(), delta); err != nil {
		m.setStatus("Shift failed: " + err.Error())
		return
	}
	m.reload()
	m.setStatus(fmt.Sprintf("Shifted the day %+dm", delta))
}

func (m *Model) requestTip() tea.Cmd {
	item, ok := m.selected()
	if !ok {
		return nil
	}
	if m.coach == nil {
		m.setStatus("Set " + coach.EnvAPIKey + " to get tips")
		return nil
	}
	if m.tipPending != "" {
		return nil
	}
	m.tipPending = item.Block.ID
	m.setStatus("Asking the coach...")

	c := m.coach
	b := item.Block
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tip, err := c.BlockTip(ctx, b)
		return tipMsg{blockID: b.ID, tip: tip, err: err}
	}
}

func (m Model) selected() (TimelineItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return TimelineItem{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) moveCursorToBlock(id string) {
	for i, it := range m.items {
		if it.Block.ID == id {
			m.cursor = i
			return
		}
	}
}

// reload re-reads the routines from disk and rebuilds the timeline.
func (m *Model) reload() {
	r, err := m.store.ActiveRoutine()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		m.setStatus("Load error: " + err.Error())
	}
	m.routine = r

	routines, err := m.store.ListRoutines()
	if err != nil {
		m.logger.Warn("list routines", zap.Error(err))
	}
	m.routines = routines

	var selectedID string
	if item, ok := m.selected(); ok {
		selectedID = item.Block.ID
	}
	m.items = BuildTimeline(m.routine, m.now)

	if m.followNow {
		if i := CurrentIndex(m.items); i >= 0 {
			m.cursor = i
		}
	} else if selectedID != "" {
		m.moveCursorToBlock(selectedID)
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// getGlamourRenderer returns a cached glamour renderer, creating one if needed
// or if the width changed.
func (m *Model) getGlamourRenderer(width int) *glamour.TermRenderer {
	if m.glamourRenderer != nil && m.glamourWidth == width {
		return m.glamourRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.glamourRenderer = r
	m.glamourWidth = width
	return r
}

func (m *Model) setStatus(msg string) {
	m.setToast(msg, engine.SeverityInfo)
}

func (m *Model) setToast(msg string, severity engine.Severity) {
	m.statusMsg = msg
	m.statusSeverity = severity
	m.statusTimeout = time.Now().Add(4 * time.Second)
}

func (m *Model) openEditor(path string) tea.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}
	c := exec.Command(editor, path)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return EditorFinishedMsg{Err: err}
	})
}
