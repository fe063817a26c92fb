package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/prompt"
)

var (
	queryScope        string
	queryTopK         int
	querySectionCap   int
	queryFiles        []string
	querySectionTypes []string
	queryJSON         bool
	queryContext      bool
	queryBudget       int
)

var queryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Retrieve relevant chunks for a query",
	Long: `Embeds the query, ranks the indexed chunks by similarity and
re-ranks for diversity. With --context the results are packed into a
single prompt-ready context block instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryScope, "scope", "s", "", "restrict retrieval to one scope")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "n", domain.DefaultTopK, "maximum number of results")
	queryCmd.Flags().IntVar(&querySectionCap, "section-cap", domain.DefaultPerSectionCap, "maximum results per document section")
	queryCmd.Flags().StringArrayVar(&queryFiles, "file", nil, "restrict retrieval to these document IDs")
	queryCmd.Flags().StringArrayVar(&querySectionTypes, "section-type", nil, "restrict retrieval to these section types")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().BoolVar(&queryContext, "context", false, "output a packed prompt context instead of a result list")
	queryCmd.Flags().IntVar(&queryBudget, "budget", prompt.DefaultCharBudget, "character budget for --context")
	rootCmd.AddCommand(queryCmd)
}

// queryResult is the JSON output shape for one retrieved chunk.
type queryResult struct {
	ChunkID     string   `json:"chunkId"`
	DocumentID  string   `json:"documentId"`
	Score       float64  `json:"score"`
	SectionType string   `json:"sectionType"`
	HeadingPath []string `json:"headingPath"`
	PageNumber  *int     `json:"pageNumber,omitempty"`
	Text        string   `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	sectionTypes, err := parseSectionTypes(querySectionTypes)
	if err != nil {
		return err
	}

	req := domain.RetrieveRequest{
		Query:         args[0],
		ScopeID:       queryScope,
		TopK:          queryTopK,
		PerSectionCap: querySectionCap,
		FileIDs:       queryFiles,
		SectionTypes:  sectionTypes,
	}

	ctx := context.Background()

	if queryContext {
		packed, selected, err := retrieverService.BuildContext(ctx, req, queryBudget)
		if err != nil {
			return fmt.Errorf("build context: %w", err)
		}
		if len(selected) == 0 {
			cmd.Println(mutedStyle.Render("No matching chunks."))
			return nil
		}
		cmd.Println(packed)
		return nil
	}

	results, err := retrieverService.Retrieve(ctx, req)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryList(cmd, results)
}

// parseSectionTypes validates the --section-type values.
func parseSectionTypes(names []string) ([]domain.SectionType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]domain.SectionType, 0, len(names))
	for _, name := range names {
		st := domain.SectionType(name)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown section type %q", domain.ErrInvalidInput, name)
		}
		types = append(types, st)
	}
	return types, nil
}

func outputQueryJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	out := make([]queryResult, 0, len(results))
	for _, r := range results {
		out = append(out, queryResult{
			ChunkID:     r.Chunk.ID,
			DocumentID:  r.Chunk.DocumentID,
			Score:       r.Score,
			SectionType: string(r.Chunk.SectionType),
			HeadingPath: r.Chunk.HeadingPath,
			PageNumber:  r.Chunk.PageNumber,
			Text:        r.Chunk.Text,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryList(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println(mutedStyle.Render("No matching chunks."))
		return nil
	}

	cmd.Println(titleStyle.Render("Results:"))
	cmd.Println()
	for i, r := range results {
		location := strings.Join(r.Chunk.HeadingPath, " > ")
		if r.Chunk.PageNumber != nil {
			location = fmt.Sprintf("%s, p.%d", location, *r.Chunk.PageNumber)
		}

		cmd.Printf("  [%d] %s %s\n", i+1, location,
			scoreStyle.Render(fmt.Sprintf("(%.3f)", r.Score)))
		cmd.Printf("      %s\n", mutedStyle.Render(fmt.Sprintf("%s · %s", r.Chunk.DocumentID, r.Chunk.SectionType)))
		cmd.Printf("      %s\n", snippet(r.Chunk.Text, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to a single display line.
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
