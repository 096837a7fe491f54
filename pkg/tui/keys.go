package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Tab          key.Binding
	ToggleAlarm  key.Binding
	ToggleLock   key.Binding
	InlineEdit   key.Binding
	ExternalEdit key.Binding
	Add          key.Binding
	Delete       key.Binding
	ShiftLater   key.Binding
	ShiftEarlier key.Binding
	Mute         key.Binding
	Routines     key.Binding
	Tip          key.Binding
	AddSubtask   key.Binding
	Subtask      key.Binding
	Focus        key.Binding
	FocusReset   key.Binding
	Reload       key.Binding
	Help         key.Binding
	Quit         key.Binding

	// Only while locked
	Late      key.Binding
	Skip      key.Binding
	Emergency key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		ToggleAlarm: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle alarm"),
		),
		ToggleLock: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle lock"),
		),
		InlineEdit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit note"),
		),
		ExternalEdit: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "$EDITOR"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add block"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete block"),
		),
		ShiftLater: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "shift +15m"),
		),
		ShiftEarlier: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "shift -15m"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Routines: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "routines"),
		),
		Tip: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "AI tip"),
		),
		AddSubtask: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "add checklist item"),
		),
		Subtask: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle checklist item"),
		),
		Focus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "focus timer"),
		),
		FocusReset: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "reset focus timer"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Late: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "I'm late (+15m)"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip block"),
		),
		Emergency: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x", "emergency unlock"),
		),
	}
}

// ShortHelp returns the footer help text.
func (k KeyMap) ShortHelp() string {
	return "↑↓ nav  space alarm  e note  a add  c check  d delete  +/- shift  f focus  m mute  r routines  t tip  ? help"
}

// LockHelp returns the footer shown while locked.
func (k KeyMap) LockHelp() string {
	return "l late (+15m)  s skip  x emergency unlock"
}

// FullHelp returns all key bindings for the help modal.
func (k KeyMap) FullHelp() [][]string {
	return [][]string{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"tab", "Switch pane (timeline / details)"},
		{"space", "Toggle the block's start alarm"},
		{"L", "Toggle screen lock (sacred blocks)"},
		{"e", "Edit block note inline"},
		{"E", "Edit routine in $EDITOR"},
		{"a", "Add block (HH:MM type activity)"},
		{"d", "Delete block (with confirmation)"},
		{"+", "Shift the whole day 15 minutes later"},
		{"-", "Shift the whole day 15 minutes earlier"},
		{"m", "Mute / unmute sounds"},
		{"r", "Switch or delete routines"},
		{"t", "Ask the coach for a tip"},
		{"c", "Add a checklist item to the block"},
		{"1-9", "Toggle checklist item N"},
		{"f", "Start / pause the focus timer"},
		{"F", "Reset the focus timer"},
		{"R", "Reload from filesystem"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
}
