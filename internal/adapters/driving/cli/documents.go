package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

var exportOutput string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a YAML document",
	Long: `Reads a YAML document and stores it. A stored document with the same
ID is replaced. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [doc-id]",
	Short: "Export a stored document as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var treeCmd = &cobra.Command{
	Use:   "tree [doc-id]",
	Short: "Show the layer tree with managed roles",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(listCmd, importCmd, exportCmd, treeCmd, deleteCmd)
}

var errNoWorkspaceService = errors.New("workspace service not configured")

func runList(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	docs, err := workspaceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	cmd.Println("Documents:")
	for i := range docs {
		cmd.Printf("  %s  %s (%dx%d)\n", docs[i].ID, docs[i].Name, docs[i].Width, docs[i].Height)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		in = f
	}

	doc, err := workspaceService.Import(cmd.Context(), in)
	if err != nil {
		return domain.NewUserError(err)
	}

	cmd.Printf("Imported %s (%s).\n", doc.ID, doc.Name)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	out := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := workspaceService.Export(cmd.Context(), args[0], out); err != nil {
		return domain.NewUserError(err)
	}
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	entries, err := workspaceService.Tree(cmd.Context(), args[0])
	if err != nil {
		return domain.NewUserError(err)
	}

	for _, e := range entries {
		cmd.Printf("%s%-4s %s", strings.Repeat("  ", e.Depth), e.Node.ID, e.Node.Name)
		if e.Role != domain.RoleUnclassified {
			cmd.Printf("  [%s]", e.Role)
		}
		cmd.Println()
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errNoWorkspaceService
	}

	if err := workspaceService.Delete(cmd.Context(), args[0]); err != nil {
		return domain.NewUserError(err)
	}

	cmd.Printf("Deleted %s.\n", args[0])
	return nil
}
