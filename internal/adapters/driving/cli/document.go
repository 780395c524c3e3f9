package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Manage indexed documents",
	Long:    `List or delete indexed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().BoolVar(&documentsJSON, "json", false, "output documents as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion")
	}

	docs, err := ingestionService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Println(styles.Title.Render("Documents"))
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:     %s\n", docs[i].Filename)
		if docs[i].FileType != "" {
			cmd.Printf("    Type:     %s\n", docs[i].FileType)
		}
		cmd.Printf("    Chunks:   %d\n", docs[i].ChunkCount)
		if !docs[i].IngestedAt.IsZero() {
			cmd.Printf("    Ingested: %s\n", docs[i].IngestedAt.Local().Format("2006-01-02 15:04:05"))
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion")
	}

	docID := args[0]
	deleted, err := ingestionService.DeleteDocument(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if !deleted {
		cmd.Printf("No document with id %s.\n", docID)
		return nil
	}
	cmd.Printf("Deleted document %s.\n", docID)
	return nil
}
