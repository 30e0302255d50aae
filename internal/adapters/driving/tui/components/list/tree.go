// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// TreeList displays a depth-first layer listing with a movable selection.
type TreeList struct {
	entries  []domain.TreeEntry
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewTreeList creates a new tree list component.
func NewTreeList(s *styles.Styles) *TreeList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &TreeList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the tree list.
func (r *TreeList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *TreeList) Update(msg tea.Msg) (*TreeList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of the tree.
func (r *TreeList) View() string {
	if len(r.entries) == 0 {
		return r.styles.Muted.Render("No layers")
	}

	visible := r.height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.entries) {
		end = len(r.entries)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderEntry(i, &r.entries[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *TreeList) renderEntry(index int, e *domain.TreeEntry) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := e.Node.Name
	if name == "" {
		name = "(unnamed)"
	}
	label := fmt.Sprintf("%s%s%s %s", indicator, strings.Repeat("  ", e.Depth), e.Node.ID, name)

	maxLen := r.width - 20
	if maxLen < 10 {
		maxLen = 10
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}

	role := ""
	if e.Role != domain.RoleUnclassified {
		role = e.Role.String()
	}

	if index == r.selected {
		return r.styles.Selected.Render(fmt.Sprintf("%-*s  %s", maxLen, label, role))
	}
	return r.styles.Role(e.Role).Render(fmt.Sprintf("%-*s  ", maxLen, label)) + r.styles.Muted.Render(role)
}

// SetEntries replaces the listing. The selection stays on the same node
// when it is still present.
func (r *TreeList) SetEntries(entries []domain.TreeEntry) {
	var current domain.NodeID
	if e := r.SelectedEntry(); e != nil {
		current = e.Node.ID
	}

	r.entries = entries
	if r.Select(current) {
		return
	}
	if r.selected >= len(entries) {
		r.selected = len(entries) - 1
	}
	if r.selected < 0 {
		r.selected = 0
	}
}

// Entries returns the current listing.
func (r *TreeList) Entries() []domain.TreeEntry {
	return r.entries
}

// Select moves the selection to the node with the given ID. It reports
// whether the node is listed.
func (r *TreeList) Select(id domain.NodeID) bool {
	for i := range r.entries {
		if r.entries[i].Node.ID == id {
			r.selected = i
			return true
		}
	}
	return false
}

// Selected returns the index of the selected entry.
func (r *TreeList) Selected() int {
	return r.selected
}

// SelectedEntry returns the selected entry, or nil if the list is empty.
func (r *TreeList) SelectedEntry() *domain.TreeEntry {
	if r.selected < 0 || r.selected >= len(r.entries) {
		return nil
	}
	return &r.entries[r.selected]
}

// MoveUp moves selection up.
func (r *TreeList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *TreeList) MoveDown() {
	if r.selected < len(r.entries)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *TreeList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of entries.
func (r *TreeList) Count() int {
	return len(r.entries)
}
