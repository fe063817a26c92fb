package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/hearth/internal/core/ports/driving"
)

var indexScope string

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Index documents into the store",
	Long: `Extracts, chunks, embeds and stores the given files.
Each file is indexed atomically: a failure leaves no partial document
behind and does not stop the remaining files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexScope, "scope", "s", "", "scope to index the documents into")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	ctx := context.Background()
	failed := 0

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.Println(errorStyle.Render(fmt.Sprintf("  %s: %v", path, err)))
			failed++
			continue
		}

		doc, err := indexerService.Index(ctx, driving.IndexRequest{
			ScopeID: indexScope,
			Name:    filepath.Base(path),
			Content: content,
		})
		if err != nil {
			cmd.Println(errorStyle.Render(fmt.Sprintf("  %s: %v", path, err)))
			failed++
			continue
		}

		cmd.Printf("  %s %s %s\n",
			successStyle.Render("indexed"),
			doc.Name,
			mutedStyle.Render(fmt.Sprintf("(%s, %d chunks)", doc.ID, doc.ChunkCount)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
