package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
)

// chromeHeight is the number of rows used by the header and status bar.
const chromeHeight = 4

// App is the layer-tree browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports      *Ports
	ctx        context.Context
	documentID string

	// session is nil until the document has been opened.
	session driving.Session

	styles *styles.Styles
	keymap *keymap.KeyMap
	tree   *list.TreeList
	status *status.Bar
	help   help.Model

	// depth counts undoable runs; savedDepth is depth at the last save.
	depth      int
	savedDepth int

	busy     bool
	showHelp bool

	// err holds a failure to open the document.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a browser for one stored document.
func NewApp(ports *Ports, documentID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if documentID == "" {
		return nil, ErrMissingDocument
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		documentID: documentID,
		styles:     s,
		keymap:     km,
		tree:       list.NewTreeList(s),
		status:     status.NewBar(s, km),
		help:       newHelp(s),
		busy:       true,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("managed-outline - "+a.documentID),
		a.openDocument(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.DocumentOpened:
		a.busy = false
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetState(status.StateError, domain.UserMessage(msg.Err))
			return a, nil
		}
		a.session = msg.Session
		return a, a.loadTree()

	case messages.TreeLoaded:
		if msg.Err != nil {
			a.status.SetState(status.StateError, domain.UserMessage(msg.Err))
			return a, nil
		}
		a.tree.SetEntries(msg.Entries)
		if msg.Focus != 0 {
			a.tree.Select(msg.Focus)
		}
		return a, nil

	case messages.OutlineCompleted:
		a.busy = false
		switch {
		case msg.Err != nil:
			a.status.SetState(status.StateError, domain.UserMessage(msg.Err))
			return a, nil
		case !msg.Done:
			a.status.SetState(status.StateReady, domain.UserMessage(domain.ErrUnknownLayerType))
			return a, nil
		}
		a.depth++
		a.status.SetState(status.StateDone, fmt.Sprintf("Outlined layer %s", msg.Target))
		a.status.SetModified(a.depth != a.savedDepth)
		return a, a.loadTreeFocused(msg.Active)

	case messages.UndoCompleted:
		a.busy = false
		if msg.Err != nil {
			a.status.SetState(status.StateError, domain.UserMessage(msg.Err))
			return a, nil
		}
		a.depth--
		a.status.SetState(status.StateDone, "Undone")
		a.status.SetModified(a.depth != a.savedDepth)
		return a, a.loadTree()

	case messages.SaveCompleted:
		a.busy = false
		if msg.Err != nil {
			a.status.SetState(status.StateError, domain.UserMessage(msg.Err))
			return a, nil
		}
		a.savedDepth = a.depth
		a.status.SetState(status.StateDone, "Saved")
		a.status.SetModified(false)
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		a.showHelp = !a.showHelp
		return nil
	}

	if a.session == nil || a.busy {
		return nil
	}

	switch {
	case keymap.Matches(k, a.keymap.Outline):
		entry := a.tree.SelectedEntry()
		if entry == nil {
			return nil
		}
		a.busy = true
		a.status.SetState(status.StateWorking, "")
		return a.outline(entry.Node.ID)

	case keymap.Matches(k, a.keymap.Undo):
		if a.depth == 0 {
			a.status.SetState(status.StateReady, "Nothing to undo")
			return nil
		}
		a.busy = true
		return a.undo()

	case keymap.Matches(k, a.keymap.Save):
		a.busy = true
		a.status.SetState(status.StateWorking, "")
		return a.save()
	}

	a.tree, _ = a.tree.Update(msg)
	return nil
}

func (a *App) openDocument() tea.Cmd {
	ws, ctx, id := a.ports.Workspace, a.ctx, a.documentID
	return func() tea.Msg {
		s, err := ws.Open(ctx, id)
		return messages.DocumentOpened{Session: s, Err: err}
	}
}

func (a *App) loadTree() tea.Cmd {
	return a.loadTreeFocused(0)
}

func (a *App) loadTreeFocused(focus domain.NodeID) tea.Cmd {
	s := a.session
	return func() tea.Msg {
		entries, err := s.Tree()
		return messages.TreeLoaded{Entries: entries, Focus: focus, Err: err}
	}
}

func (a *App) outline(target domain.NodeID) tea.Cmd {
	s, ctx := a.session, a.ctx
	return func() tea.Msg {
		done, err := s.Outline(ctx, target)
		return messages.OutlineCompleted{Target: target, Active: s.Active(), Done: done, Err: err}
	}
}

func (a *App) undo() tea.Cmd {
	s := a.session
	return func() tea.Msg {
		return messages.UndoCompleted{Err: s.Undo()}
	}
}

func (a *App) save() tea.Cmd {
	s, ctx := a.session, a.ctx
	return func() tea.Msg {
		return messages.SaveCompleted{Err: s.Save(ctx)}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("managed-outline"))
	if a.session != nil {
		doc := a.session.Document()
		b.WriteString("  " + a.styles.Subtitle.Render(doc.Name))
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf(" (%s, %dx%d)", doc.ID, doc.Width, doc.Height)))
	}
	b.WriteString("\n\n")

	switch {
	case a.err != nil:
		b.WriteString(a.styles.Error.Render(domain.UserMessage(a.err)))
	case a.showHelp:
		b.WriteString(a.renderHelp())
	default:
		b.WriteString(a.tree.View())
	}

	b.WriteString("\n\n")
	b.WriteString(a.status.View())
	return b.String()
}

func newHelp(s *styles.Styles) help.Model {
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = s.Subtitle
	h.Styles.FullDesc = s.Help
	h.Styles.FullSeparator = s.Muted
	return h
}

func (a *App) renderHelp() string {
	return a.help.View(a.keymap)
}

// SetDimensions sizes the app and its components.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.help.Width = width
	a.ready = true
	a.tree.SetDimensions(width, height-chromeHeight)
	a.status.SetWidth(width)
}

// Tree returns the layer tree component.
func (a *App) Tree() *list.TreeList {
	return a.tree
}

// Status returns the status bar component.
func (a *App) Status() *status.Bar {
	return a.status
}

// Err returns the error that prevented the document from opening.
func (a *App) Err() error {
	return a.err
}

// ShowHelp reports whether the key list is displayed.
func (a *App) ShowHelp() bool {
	return a.showHelp
}
