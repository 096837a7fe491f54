package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/tempo/pkg/routine"
)

const minWidth = 40
const minHeight = 10

// View implements tea.Model.
func (m Model) View() string {
	w := m.width
	h := m.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	if m.locked() {
		return placeOverlay(m.renderLockModal(), w, h)
	}

	if m.showHelpModal {
		return placeOverlay(m.renderHelpModal(), w, h)
	}

	if m.showDeleteConfirm {
		return placeOverlay(m.renderDeleteModal(), w, h)
	}

	if m.showPicker {
		return placeOverlay(m.renderPickerModal(), w, h)
	}

	var b strings.Builder

	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")

	b.WriteString(m.renderRoutineTabs(w))
	b.WriteString("\n")

	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")

	headerLines := 3
	footerLines := 2
	contentHeight := h - headerLines - footerLines

	leftWidth := w / 3
	if leftWidth < 28 {
		leftWidth = 28
	}
	rightWidth := w - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}

	leftPanel := m.renderTimelinePanel(leftWidth, contentHeight)
	rightPanel := m.renderDetailPanel(rightWidth, contentHeight)

	sepColor := ColorGrayDim
	if m.focusedPane == 1 || m.isEditing {
		sepColor = ColorPurple
	}
	sep := lipgloss.NewStyle().Foreground(sepColor).Render("│")
	for i := 0; i < contentHeight; i++ {
		b.WriteString(getLine(leftPanel, i, leftWidth))
		b.WriteString(sep)
		b.WriteString(getLine(rightPanel, i, rightWidth))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")

	b.WriteString(m.renderFooter(w))

	return b.String()
}

func (m Model) renderHeader(width int) string {
	title := HeaderStyle.Render("Tempo")
	if m.routine != nil {
		title += HeaderCountStyle.Render("  " + m.routine.Name)
	}

	stats := fmt.Sprintf("%s  %d%% of day", m.now.Format("15:04"), routine.CompletionPercent(m.routine, m.now))
	statsRendered := HeaderCountStyle.Render(stats)
	if m.muted {
		statsRendered = MutedStyle.Render("muted  ") + statsRendered
	}
	if m.focus.Started() {
		statsRendered = ActiveStyle.Render(fmt.Sprintf("%s %s %s  ", IconFocus, m.focus.Phase, m.focus.Clock(m.engine.Now()))) + statsRendered
	}

	status := ""
	if m.statusMsg != "" && time.Now().Before(m.statusTimeout) {
		status = toastStyle(m.statusSeverity).Render(m.statusMsg) + "  "
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(statsRendered) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return title + strings.Repeat(" ", gap) + status + statsRendered
}

func (m Model) renderRoutineTabs(width int) string {
	if len(m.routines) == 0 {
		return FooterStyle.Render("Routines: (none, press r)")
	}

	tabs := FooterStyle.Render("Routines: ")
	for _, r := range m.routines {
		var tab string
		if m.routine != nil && r.ID == m.routine.ID {
			tab = ActiveTabStyle.Render(r.Name)
		} else {
			tab = InactiveTabStyle.Render(r.Name)
		}
		if lipgloss.Width(tabs)+lipgloss.Width(tab) > width {
			break
		}
		tabs += tab
	}
	return tabs
}

func (m Model) renderTimelinePanel(width, height int) string {
	var lines []string

	listHeight := height - 1
	if m.isInputMode {
		listHeight--
	}
	if listHeight < 1 {
		listHeight = 1
	}

	if len(m.items) == 0 {
		lines = append(lines, FooterStyle.Render("No blocks yet. Press 'a' to add one."))
	}

	// Scrolling window
	startIdx := 0
	endIdx := len(m.items)
	if len(m.items) > listHeight {
		half := listHeight / 2
		startIdx = m.cursor - half
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx = startIdx + listHeight
		if endIdx > len(m.items) {
			endIdx = len(m.items)
			startIdx = endIdx - listHeight
			if startIdx < 0 {
				startIdx = 0
			}
		}
	}

	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, strings.Split(renderTimelineItem(m.items[i], i == m.cursor, width), "\n")...)
	}
	if len(lines) > listHeight {
		lines = lines[:listHeight]
	}

	if m.isInputMode {
		lines = append(lines, InputPromptStyle.Render("> ")+m.textInput.View())
	}

	for len(lines) < height-1 {
		lines = append(lines, "")
	}

	dirPath := m.store.RoutinesDir()
	lines = append(lines, lipgloss.NewStyle().Foreground(ColorGrayDim).Render(fileHyperlink(dirPath)))

	return strings.Join(lines, "\n")
}

// renderTimelineItem renders one row: status, start time, kind marker,
// activity and, for the active block, a progress bar.
func renderTimelineItem(item TimelineItem, isSelected bool, width int) string {
	var icon string
	var rowStyle lipgloss.Style
	switch item.Status {
	case routine.StatusCompleted:
		icon = IconCompleted
		rowStyle = CompletedStyle
	case routine.StatusActive:
		icon = IconActive
		rowStyle = ActiveStyle
	default:
		icon = IconUpcoming
		rowStyle = UpcomingStyle
		if item.IsNext {
			icon = IconNext
		}
	}

	marker := lipgloss.NewStyle().Foreground(kindColor(item.Block.Kind)).Render("▍")
	flags := ""
	if item.Block.Locks() {
		flags += " " + lipgloss.NewStyle().Foreground(ColorMagenta).Render(IconLock)
	}
	if !item.Block.AlarmEnabled {
		flags += " " + TimeStyle.Render(IconAlarmOff)
	}

	prefix := rowStyle.Render(icon) + " " + TimeStyle.Render(item.Block.Start.String()) + " " + marker
	room := width - lipgloss.Width(prefix) - lipgloss.Width(flags) - 1
	activity := item.Block.Activity
	if room > 0 && lipgloss.Width(activity) > room {
		activity = lipgloss.NewStyle().MaxWidth(room-1).Render(activity) + "…"
	}
	line := prefix + " " + rowStyle.Render(activity) + flags

	if item.Status == routine.StatusActive {
		barWidth := width - 12
		if barWidth > 4 {
			line += "\n" + strings.Repeat(" ", 8) + progressBar(item.Progress, barWidth)
		}
	}

	if isSelected {
		rows := strings.Split(line, "\n")
		pad := width - lipgloss.Width(rows[0])
		if pad > 0 {
			rows[0] += strings.Repeat(" ", pad)
		}
		rows[0] = SelectedStyle.Render(rows[0])
		line = strings.Join(rows, "\n")
	}
	return line
}

func (m Model) renderDetailPanel(width, height int) string {
	item, ok := m.selected()
	if !ok {
		return FooterStyle.Render(" Select a block to see details")
	}

	bodyHeight := height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var pathLine string
	if m.routine != nil {
		pathLine = lipgloss.NewStyle().Foreground(ColorGrayDim).Render(fileHyperlink(m.store.RoutinePath(m.routine.ID)))
	}

	var lines []string
	if m.isEditing {
		lines = append(lines, strings.Split(m.render(blockHeader(item)), "\n")...)
		lines = append(lines, strings.Split(m.noteEditor.View(), "\n")...)
	} else {
		lines = strings.Split(m.render(blockHeader(item)+blockBody(item.Block, m.tipPending == item.Block.ID)), "\n")

		scroll := m.notesScroll
		if scroll > len(lines)-1 {
			scroll = len(lines) - 1
		}
		if scroll < 0 {
			scroll = 0
		}
		lines = lines[scroll:]
	}

	if len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	lines = append(lines, pathLine)

	return strings.Join(lines, "\n")
}

// render runs markdown through the cached glamour renderer.
func (m Model) render(md string) string {
	out := md
	if m.glamourRenderer != nil {
		if rendered, err := m.glamourRenderer.Render(md); err == nil {
			out = rendered
		}
	}
	return strings.TrimRight(out, "\n ")
}

// blockHeader builds the markdown title and metadata for a block.
func blockHeader(item TimelineItem) string {
	var md strings.Builder
	b := item.Block

	md.WriteString("# " + b.Activity + "\n\n")

	meta := []string{
		fmt.Sprintf("**%s–%s**", b.Start, item.End),
		"**Type:** " + string(b.Kind),
		"**Status:** " + string(item.Status),
	}
	if item.Status == routine.StatusActive {
		meta = append(meta, fmt.Sprintf("**Progress:** %d%%", int(item.Progress*100)))
	}
	md.WriteString(strings.Join(meta, " | ") + "\n\n")

	var flags []string
	if b.AlarmEnabled {
		flags = append(flags, "alarm on")
	} else {
		flags = append(flags, "alarm off")
	}
	if b.Locks() {
		flags = append(flags, "screen lock")
	}
	if b.Location != "" {
		flags = append(flags, "at "+b.Location)
	}
	md.WriteString("*" + strings.Join(flags, ", ") + "*\n\n")

	return md.String()
}

// blockBody builds the note, subtasks and coach tip for a block.
func blockBody(b routine.TimeBlock, tipPending bool) string {
	var md strings.Builder

	if b.Note != "" {
		md.WriteString(b.Note)
		if !strings.HasSuffix(b.Note, "\n") {
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}

	if len(b.Subtasks) > 0 {
		md.WriteString(fmt.Sprintf("**Checklist** %d%%\n\n", b.SubtaskPercent()))
		for i, st := range b.Subtasks {
			box := "[ ]"
			if st.Done {
				box = "[x]"
			}
			md.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, box, st.Text))
		}
		md.WriteString("\n")
	}

	switch {
	case tipPending:
		md.WriteString("> *Asking the coach...*\n")
	case b.Suggestion != "":
		md.WriteString("> **Tip:** " + b.Suggestion + "\n")
	}

	return md.String()
}

func (m Model) renderFooter(width int) string {
	help := m.keys.ShortHelp()
	if m.isInputMode && m.subtaskFor != "" {
		help = "checklist item  enter confirm  esc cancel"
	} else if m.isInputMode {
		help = "HH:MM [work|sacred|personal|break] activity  enter confirm  esc cancel"
	} else if m.isEditing {
		help = "esc save & exit  ctrl+s save  ctrl+c cancel"
	} else if m.focusedPane == 1 {
		help = "↑↓ scroll details  tab timeline  e edit note  E $EDITOR  ? help"
	}
	return FooterStyle.MaxWidth(width).Render(help)
}

func (m Model) renderLockModal() string {
	lock := m.engine.State().Lock
	var b strings.Builder

	b.WriteString(LockTitleStyle.Render("Sacred time"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Render(lock.Activity))
	b.WriteString("\n")
	b.WriteString(TimeStyle.Render("since " + lock.Start.String()))
	b.WriteString("\n\n")
	b.WriteString("Step away from the screen.\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorYellow).Render("[l]") + " I'm late (+15m)  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorCyan).Render("[s]") + " Skip  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[x]") + " Emergency")

	return LockModalStyle.Render(b.String())
}

func (m Model) renderHelpModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(ColorBlue).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	for _, binding := range m.keys.FullHelp() {
		b.WriteString(keyStyle.Render(binding[0]))
		b.WriteString(descStyle.Render(binding[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("While locked: " + m.keys.LockHelp()))
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("Press Esc or ? to close"))

	return ModalStyle.Render(b.String())
}

func (m Model) renderDeleteModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Delete Block"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete '%s' at %s?\n\n", m.deleteTarget.Activity, m.deleteTarget.Start))
	b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Render("[y]") + " Yes  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[n]") + " No")

	return ModalStyle.Render(b.String())
}

func (m Model) renderPickerModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Routines"))
	b.WriteString("\n\n")

	for i, r := range m.routines {
		line := fmt.Sprintf("%-28s %2d blocks", r.Name, len(r.Blocks))
		if m.routine != nil && r.ID == m.routine.ID {
			line = "● " + line
		} else {
			line = "  " + line
		}
		if i == m.pickerCursor {
			line = SelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("enter use  d delete  esc close"))

	return ModalStyle.Render(b.String())
}

// fileHyperlink wraps a file path in an OSC 8 terminal hyperlink so it's clickable.
func fileHyperlink(path string) string {
	url := "file://" + path
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, path)
}

// Helper functions

func getLine(block string, idx int, width int) string {
	lines := strings.Split(block, "\n")
	if idx < len(lines) {
		line := lines[idx]
		lineWidth := lipgloss.Width(line)
		if lineWidth < width {
			return line + strings.Repeat(" ", width-lineWidth)
		}
		return line
	}
	return strings.Repeat(" ", width)
}

func placeOverlay(modal string, width, height int) string {
	modalLines := strings.Split(modal, "\n")

	topPadding := (height - len(modalLines)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (width - lipgloss.Width(modalLines[0])) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var result strings.Builder
	for i := 0; i < topPadding; i++ {
		result.WriteString("\n")
	}

	for _, line := range modalLines {
		result.WriteString(strings.Repeat(" ", leftPadding))
		result.WriteString(line)
		result.WriteString("\n")
	}

	return result.String()
}
