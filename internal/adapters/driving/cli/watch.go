package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
	"github.com/custodia-labs/managed-outline/internal/logger"
)

const (
	// watchSettle lets an editor finish writing before the file is read.
	watchSettle = 100 * time.Millisecond

	defaultWatchInterval = time.Second
)

var (
	watchInterval time.Duration
	watchExport   string
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-outline a YAML document whenever it changes",
	Long: `Imports the document, refreshes every managed group, and repeats each
time the file is saved. Bursts of saves are coalesced and runs are spaced
at least --interval apart. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", defaultWatchInterval, "minimum time between runs")
	watchCmd.Flags().StringVarP(&watchExport, "export", "o", "", "write the outlined document to this file after each run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	w, err := newFileWatcher(workspaceService, args[0], watchExport, watchInterval, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", w.path)
	return w.Run(ctx)
}

// fileWatcher re-imports a document file and refreshes its managed groups
// each time the file changes.
type fileWatcher struct {
	workspace driving.WorkspaceService
	path      string
	export    string
	limiter   *rate.Limiter
	out       io.Writer
}

func newFileWatcher(
	workspace driving.WorkspaceService,
	path, export string,
	interval time.Duration,
	out io.Writer,
) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if export != "" {
		if export, err = filepath.Abs(export); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", export, err)
		}
		if export == abs {
			return nil, fmt.Errorf("%w: export target must differ from the watched file", domain.ErrInvalidInput)
		}
	}
	if interval <= 0 {
		interval = defaultWatchInterval
	}

	return &fileWatcher{
		workspace: workspace,
		path:      abs,
		export:    export,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		out:       out,
	}, nil
}

// Run processes the file once, then on every change until ctx is done.
func (w *fileWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace the file on save, so watch its directory.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	w.limiter.Allow()
	w.process(ctx)

	var pending *time.Timer
	var fire <-chan time.Time
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			if fire == nil {
				pending = time.NewTimer(watchSettle + w.limiter.Reserve().Delay())
				fire = pending.C
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-fire:
			fire = nil
			w.process(ctx)
		}
	}
}

// process imports the file and refreshes every managed group. Failures
// are reported and the watch continues.
func (w *fileWatcher) process(ctx context.Context) {
	f, err := os.Open(w.path)
	if err != nil {
		fmt.Fprintf(w.out, "Cannot read %s: %v\n", w.path, err)
		return
	}
	doc, err := w.workspace.Import(ctx, f)
	f.Close()
	if err != nil {
		fmt.Fprintf(w.out, "Cannot import %s: %s\n", w.path, domain.UserMessage(err))
		return
	}

	summary, err := w.workspace.OutlineAll(ctx, doc.ID)
	if err != nil {
		fmt.Fprintf(w.out, "Cannot outline %s: %s\n", doc.ID, domain.UserMessage(err))
		return
	}
	fmt.Fprintf(w.out, "%s: outlined %d, skipped %d, failed %d\n",
		doc.ID, len(summary.Outlined), len(summary.Skipped), len(summary.Failed))
	for id, ferr := range summary.Failed {
		fmt.Fprintf(w.out, "  layer %s: %s\n", id, domain.UserMessage(ferr))
	}

	if w.export == "" {
		return
	}
	if err := w.writeExport(ctx, doc.ID); err != nil {
		fmt.Fprintf(w.out, "Cannot export %s: %v\n", doc.ID, err)
	}
}

func (w *fileWatcher) writeExport(ctx context.Context, documentID string) error {
	f, err := os.Create(w.export)
	if err != nil {
		return err
	}
	if err := w.workspace.Export(ctx, documentID, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
