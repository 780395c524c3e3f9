package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var (
	askDoc  string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the passages most relevant to the question and asks the
language model to answer from them only. The answer lists its sources.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDoc, "doc", "d", "", "restrict the context to one document")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	question := strings.Join(args, " ")
	answer, err := queryService.Ask(cmd.Context(), question, askDoc)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(styles.Title.Render("Answer"))
	cmd.Println(styles.Answer.Render(answer.Text))
	printSources(cmd, answer.Sources)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(styles.Label.Render("Sources"))
	for i, src := range sources {
		cmd.Printf("  [%d] %s\n", i+1, src.Filename)
		cmd.Printf("      %s\n", styles.Muted.Render(strings.ReplaceAll(src.Preview, "\n", " ")))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
