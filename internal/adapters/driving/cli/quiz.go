package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	quizCount       int
	quizDoc         string
	quizJSON        bool
	quizHideAnswers bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz [topic]",
	Short: "Generate a multiple-choice quiz",
	Long: `Generates multiple-choice questions from the indexed material.
Without a topic the quiz covers the main concepts. Every question has
four options and exactly one correct answer.`,
	Args: cobra.ArbitraryArgs,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().IntVarP(&quizCount, "questions", "n", 5, "number of questions (max 20)")
	quizCmd.Flags().StringVarP(&quizDoc, "doc", "d", "", "restrict the material to one document")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "output the quiz as JSON")
	quizCmd.Flags().BoolVar(&quizHideAnswers, "hide-answers", false, "print the answer key at the end instead of after each question")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	topic := strings.Join(args, " ")
	quiz, err := queryService.GenerateQuiz(cmd.Context(), topic, quizCount, quizDoc)
	if err != nil {
		return fmt.Errorf("quiz failed: %w", err)
	}

	if quizJSON {
		return printJSON(cmd, quiz)
	}

	cmd.Println(styles.Title.Render(fmt.Sprintf("Quiz: %s (%d questions)", quiz.Topic, len(quiz.Questions))))
	cmd.Println()
	for i, q := range quiz.Questions {
		cmd.Printf("%d. %s\n", i+1, q.Question)
		for _, opt := range q.Options {
			cmd.Printf("   %s) %s\n", opt.Label, opt.Text)
		}
		if !quizHideAnswers {
			cmd.Printf("   %s\n", styles.Success.Render("Answer: "+q.CorrectAnswer))
		}
		cmd.Println()
	}

	if quizHideAnswers {
		cmd.Println(styles.Label.Render("Answer key"))
		for i, q := range quiz.Questions {
			cmd.Printf("  %d. %s\n", i+1, q.CorrectAnswer)
		}
	}
	return nil
}
