package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var (
	ingestName string
	ingestJSON bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add files to the study index",
	Long: `Loads, chunks and indexes PDF, text and Word files.
Each file becomes a new document with its own id. Source files are removed
after a successful ingest unless storage.remove_source is false.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "display name (single file only)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion")
	}
	if ingestName != "" && len(args) > 1 {
		return fmt.Errorf("%w: --name can only be used with a single file", domain.ErrInvalidInput)
	}

	var results []domain.IngestResult
	var errs []error
	for _, path := range args {
		name := ingestName
		if name == "" {
			name = filepath.Base(path)
		}

		result, err := ingestionService.Ingest(cmd.Context(), path, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if !ingestJSON {
				cmd.Printf("%s %s: %v\n", styles.Error.Render("✗"), name, err)
			}
			continue
		}
		results = append(results, result)
		if !ingestJSON {
			cmd.Printf("%s %s %s\n", styles.Success.Render("✓"), result.Filename,
				styles.Muted.Render(fmt.Sprintf("(%s, %d chunks)", result.DocumentID, result.ChunkCount)))
		}
	}

	if ingestJSON {
		if results == nil {
			results = []domain.IngestResult{}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
	}

	return errors.Join(errs...)
}
