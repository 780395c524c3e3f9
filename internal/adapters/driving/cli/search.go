package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var (
	searchLimit int
	searchDoc   string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find passages similar to a query",
	Long: `Embeds the query and returns the most similar chunks from the index,
highest similarity first. No language model is involved.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().StringVarP(&searchDoc, "doc", "d", "", "restrict the search to one document")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResult is the JSON view of a retrieved chunk.
type searchResult struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Filename   string  `json:"filename"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return notConfigured("retrieval")
	}

	results, err := retrievalService.Retrieve(cmd.Context(), args[0], searchLimit, searchDoc)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	out := make([]searchResult, len(results))
	for i := range results {
		c := results[i].Chunk
		out[i] = searchResult{
			DocumentID: c.DocumentID,
			ChunkID:    c.ID,
			Filename:   c.Filename,
			Position:   c.Position,
			Score:      results[i].Score,
			Content:    c.Content,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(styles.Title.Render("Results:"))
	cmd.Println()
	for i := range results {
		c := results[i].Chunk
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, c.Filename, results[i].Score)
		cmd.Printf("      %s\n", styles.Muted.Render(domain.Preview(c.Content)))
		cmd.Println()
	}
	return nil
}
