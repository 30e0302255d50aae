package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

var outlineAll bool

var outlineCmd = &cobra.Command{
	Use:   "outline [doc-id] [layer-id]",
	Short: "Outline a text layer or refresh a managed group",
	Long: `Draws an outline around the text belonging to the given layer.

The layer may be a plain text layer, which is wrapped in a new managed
group, or any part of an existing managed group, whose outline is redrawn.
With --all every managed group in the document is refreshed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runOutline,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [doc-id] [layer-id]",
	Short: "Show how an outline run would see a layer",
	Args:  cobra.ExactArgs(2),
	RunE:  runInspect,
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate [doc-id] [layer-id]",
	Short: "Copy a layer and its children, tags included",
	Long: `Copies a layer and its subtree directly above the original, keeping
every tag. Duplicating a managed group leaves the copy pointing at the
original group; outlining the copy repairs it.`,
	Args: cobra.ExactArgs(2),
	RunE: runDuplicate,
}

func init() {
	outlineCmd.Flags().BoolVarP(&outlineAll, "all", "a", false, "refresh every managed group")
	rootCmd.AddCommand(outlineCmd, inspectCmd, duplicateCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	documentID := args[0]
	if outlineAll {
		if len(args) > 1 {
			return fmt.Errorf("%w: --all takes no layer id", domain.ErrInvalidInput)
		}
		return runOutlineAll(cmd, documentID)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: a layer id or --all is required", domain.ErrInvalidInput)
	}

	target, err := parseLayerID(args[1])
	if err != nil {
		return err
	}

	done, err := workspaceService.Outline(cmd.Context(), documentID, target)
	if err != nil {
		return domain.NewUserError(err)
	}
	if !done {
		cmd.Println("Nothing to outline: select a text layer or a managed outline group.")
		return nil
	}

	cmd.Printf("Outlined layer %s in %s.\n", target, documentID)
	return nil
}

func runOutlineAll(cmd *cobra.Command, documentID string) error {
	summary, err := workspaceService.OutlineAll(cmd.Context(), documentID)
	if err != nil {
		return domain.NewUserError(err)
	}

	printSummary(cmd, summary)
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d group(s) could not be outlined", len(summary.Failed))
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary *domain.OutlineSummary) {
	cmd.Printf("Outlined %d group(s), skipped %d.\n", len(summary.Outlined), len(summary.Skipped))

	failed := make([]domain.NodeID, 0, len(summary.Failed))
	for id := range summary.Failed {
		failed = append(failed, id)
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	for _, id := range failed {
		cmd.Printf("  layer %s: %s\n", id, domain.UserMessage(summary.Failed[id]))
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	target, err := parseLayerID(args[1])
	if err != nil {
		return err
	}

	in, err := workspaceService.Inspect(cmd.Context(), args[0], target)
	if err != nil {
		return domain.NewUserError(err)
	}

	cmd.Printf("Layer:   %s %s (%s)\n", in.Target.ID, in.Target.Name, in.Target.Kind)
	cmd.Printf("Role:    %s\n", in.Role)
	if in.Root != domain.NoParent {
		cmd.Printf("Root:    %s\n", in.Root)
		cmd.Printf("Text:    %s\n", optionalID(in.Text))
		cmd.Printf("Outline: %s\n", optionalID(in.Outline))
		cmd.Printf("Member:  %t\n", in.Member)
	}

	switch {
	case in.Err != nil:
		cmd.Printf("Status:  %s\n", domain.UserMessage(in.Err))
	case in.OutlineErr != nil:
		cmd.Printf("Status:  ready, outline will be recreated (%s)\n", domain.UserMessage(in.OutlineErr))
	default:
		cmd.Println("Status:  ready")
	}
	return nil
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	target, err := parseLayerID(args[1])
	if err != nil {
		return err
	}

	id, err := workspaceService.Duplicate(cmd.Context(), args[0], target)
	if err != nil {
		return domain.NewUserError(err)
	}

	cmd.Printf("Duplicated layer %s as %s.\n", target, id)
	return nil
}

func parseLayerID(s string) (domain.NodeID, error) {
	id, err := domain.ParseNodeID(s)
	if err != nil {
		return 0, fmt.Errorf("%w: layer id %q", err, s)
	}
	return id, nil
}

func optionalID(id domain.NodeID) string {
	if id == domain.NoParent {
		return "none"
	}
	return id.String()
}
