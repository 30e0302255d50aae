// Package cli provides the cobra command tree for managed-outline.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
	"github.com/custodia-labs/managed-outline/internal/logger"
)

// Command annotations read by connect.
const (
	// skipSetup marks commands that run without opening storage.
	skipSetup = "skip-setup"

	// quiet marks commands that own the terminal, so services must not
	// draw progress.
	quiet = "quiet"
)

var (
	version = "dev"

	verbose bool
	dataDir string

	workspaceService driving.WorkspaceService
	settingsService  driving.SettingsService

	setup   SetupFunc
	cleanup func()
)

// Services holds the driving ports the commands use.
type Services struct {
	Workspace driving.WorkspaceService
	Settings  driving.SettingsService
}

// SetupOptions are passed to a SetupFunc.
type SetupOptions struct {
	// DataDir holds the document database. Empty means the default.
	DataDir string

	// Quiet disables terminal progress output.
	Quiet bool
}

// SetupFunc opens storage and builds the services.
// The returned func releases what setup opened.
type SetupFunc func(opts SetupOptions) (*Services, func(), error)

var rootCmd = &cobra.Command{
	Use:   "managed-outline",
	Short: "Keep outlines around text layers in sync",
	Long: `managed-outline draws a stroked outline around a text layer and keeps
the text, the outline and their group linked through layer tags.

Running it again on any part of a managed group redraws the outline from
the current text. Duplicated groups are detected and repaired.`,
	SilenceUsage:      true,
	PersistentPreRunE: connect,
	PersistentPostRun: func(*cobra.Command, []string) { Close() },
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each outline decision to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the document database")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetSetup registers the function that builds services on first use.
func SetSetup(fn SetupFunc) {
	setup = fn
}

// SetServices injects services directly, bypassing setup.
func SetServices(workspace driving.WorkspaceService, settings driving.SettingsService) {
	workspaceService = workspace
	settingsService = settings
}

func connect(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipSetup] == "true" || setup == nil || workspaceService != nil {
		return nil
	}

	services, release, err := setup(SetupOptions{
		DataDir: dataDir,
		Quiet:   cmd.Annotations[quiet] == "true",
	})
	if err != nil {
		return err
	}
	workspaceService = services.Workspace
	settingsService = services.Settings
	cleanup = release
	return nil
}

// Close releases whatever setup opened. It is safe to call more than once.
// PersistentPostRun does not run when a command fails, so callers of
// Execute should also call Close.
func Close() {
	if cleanup == nil {
		return
	}
	cleanup()
	cleanup = nil
	workspaceService = nil
	settingsService = nil
}
