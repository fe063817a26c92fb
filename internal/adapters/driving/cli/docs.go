package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	docsScope    string
	docsClearAll bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage indexed documents",
	Long:  `List or remove documents from the store.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove documents in bulk",
	Long:  `Removes every document in a scope, or the whole store with --all.`,
	Args:  cobra.NoArgs,
	RunE:  runDocsClear,
}

func init() {
	docsListCmd.Flags().StringVarP(&docsScope, "scope", "s", "", "only list documents in this scope")
	docsClearCmd.Flags().StringVarP(&docsScope, "scope", "s", "", "scope to clear")
	docsClearCmd.Flags().BoolVar(&docsClearAll, "all", false, "clear the whole store")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsClearCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docs, err := libraryService.List(context.Background(), docsScope)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println(mutedStyle.Render("No documents indexed."))
		return nil
	}

	cmd.Println(titleStyle.Render("Documents:"))
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:   %s\n", docs[i].Name)
		cmd.Printf("    Type:   %s\n", docs[i].Type)
		if docs[i].ScopeID != "" {
			cmd.Printf("    Scope:  %s\n", docs[i].ScopeID)
		}
		cmd.Printf("    Chunks: %d\n", docs[i].ChunkCount)
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("%s %s\n", successStyle.Render("deleted"), args[0])
	return nil
}

func runDocsClear(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()
	switch {
	case docsClearAll:
		if err := libraryService.ClearAll(ctx); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		cmd.Println(successStyle.Render("cleared all documents"))
	case docsScope != "":
		if err := libraryService.ClearScope(ctx, docsScope); err != nil {
			return fmt.Errorf("failed to clear scope: %w", err)
		}
		cmd.Printf("%s scope %s\n", successStyle.Render("cleared"), docsScope)
	default:
		return errors.New("either --scope or --all is required")
	}
	return nil
}
