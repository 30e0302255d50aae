package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [doc-id]",
	Short: "Browse a document's layers interactively",
	Long: `Opens a stored document in an interactive layer-tree browser.

Controls:
  ↑/k, ↓/j - Move through the layer tree
  Enter    - Outline the selected layer
  u        - Undo the last outline
  s        - Save the document
  ?        - Toggle help
  q        - Quit`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{quiet: "true"},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Workspace: workspaceService}, args[0])
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
