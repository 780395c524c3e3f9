package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	summarizeDoc  string
	summarizeJSON bool
)

var summarizeCmd = &cobra.Command{
	Use:     "summarize [topic]",
	Aliases: []string{"summarise"},
	Short:   "Summarise a document or topic",
	Long: `Summarises the indexed material. Use --doc to summarise one document,
a topic to focus the summary, or both.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeDoc, "doc", "d", "", "document to summarise")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	topic := strings.Join(args, " ")
	summary, err := queryService.Summarize(cmd.Context(), summarizeDoc, topic)
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	if summarizeJSON {
		return printJSON(cmd, summary)
	}

	title := "Summary"
	if summary.Topic != "" {
		title += ": " + summary.Topic
	}
	cmd.Println(styles.Title.Render(title))
	cmd.Println(styles.Answer.Render(summary.Text))
	printSources(cmd, summary.Sources)
	return nil
}
