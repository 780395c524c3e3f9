package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Provider flags shared by the embedding and llm subcommands.
var (
	providerName  string
	providerModel string
	providerSkip  bool
)

// stdin is the source for interactive prompts.
var stdin io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking, retrieval and storage.

Settings live in ~/.studyrag/config.toml. Environment variables such as
OPENAI_API_KEY, ANTHROPIC_API_KEY and LLM_MODEL override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to index and search documents.

Changing the embedding model makes an existing index unusable; delete the
data directory and re-ingest after switching.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the language model used for answers, quizzes and summaries.`,
	RunE:  runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&providerName, "provider", "", "provider name (prompted when empty)")
		c.Flags().StringVar(&providerModel, "model", "", "model name (provider default when empty)")
		c.Flags().BoolVar(&providerSkip, "no-validate", false, "do not ping the provider after saving")
	}

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(styles.Title.Render("Current Settings"))
	cmd.Println()

	cmd.Println(styles.Label.Render("[Embedding]"))
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println(styles.Label.Render("[LLM]"))
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (none)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", displayKey(settings.LLM.APIKey))
		}
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println(styles.Label.Render("[Generation]"))
	cmd.Printf("  Temperature: %g\n", settings.Generation.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.Generation.MaxTokens)
	cmd.Printf("  Timeout: %s\n", settings.Generation.Timeout)
	cmd.Printf("  Max retries: %d\n", settings.Generation.MaxRetries)
	cmd.Println()

	cmd.Println(styles.Label.Render("[Chunking]"))
	cmd.Printf("  Chunk size: %d %s\n", settings.Chunking.ChunkSize, settings.Chunking.Measure)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println(styles.Label.Render("[Retrieval]"))
	cmd.Printf("  Top K: %d (quiz %d, summary %d)\n",
		settings.Retrieval.TopK, settings.Retrieval.QuizTopK, settings.Retrieval.SummaryTopK)
	cmd.Printf("  Max context: %d characters\n", settings.Retrieval.MaxContextChars)
	if settings.Retrieval.MinScore > 0 {
		cmd.Printf("  Min score: %g\n", settings.Retrieval.MinScore)
	}
	cmd.Println()

	cmd.Println(styles.Label.Render("[Storage]"))
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	}
	if settings.Storage.InboxDir != "" {
		cmd.Printf("  Inbox dir: %s\n", settings.Storage.InboxDir)
	}
	cmd.Printf("  Remove source: %t\n", settings.Storage.RemoveSource)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(styles.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'studyrag settings embedding' to fix configuration issues.")
	} else {
		cmd.Println(styles.Success.Render("Configuration is valid."))
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	reader := bufio.NewReader(stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	reader := bufio.NewReader(stdin)
	return configureLLMProvider(cmd, reader)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, err := chooseProvider(cmd, reader, "Select Embedding Provider", domain.AllEmbeddingProviders())
	if err != nil {
		return err
	}

	model := chooseModel(cmd, reader, domain.DefaultEmbeddingModels()[provider])

	apiKey := readAPIKey(cmd, reader, provider)

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if !providerSkip {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, err := chooseProvider(cmd, reader, "Select LLM Provider", domain.AllLLMProviders())
	if err != nil {
		return err
	}

	model := chooseModel(cmd, reader, domain.DefaultLLMModels()[provider])

	apiKey := readAPIKey(cmd, reader, provider)

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !providerSkip {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateLLMConfig(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// chooseProvider takes --provider when set, otherwise prompts with a numbered menu.
func chooseProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	title string,
	providers []domain.AIProvider,
) (domain.AIProvider, error) {
	if providerName != "" {
		p := domain.AIProvider(strings.ToLower(providerName))
		for _, candidate := range providers {
			if candidate == p {
				return p, nil
			}
		}
		return "", fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidInput, providerName)
	}

	cmd.Println(title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	return providers[idx-1], nil
}

// chooseModel takes --model when set, otherwise prompts with the default.
func chooseModel(cmd *cobra.Command, reader *bufio.Reader, defaultModel string) string {
	if providerModel != "" {
		return providerModel
	}
	if providerName != "" {
		return defaultModel
	}
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		return defaultModel
	}
	return model
}

// readAPIKey prompts for a key when the provider needs one.
// An empty answer keeps the key already stored or set in the environment.
func readAPIKey(cmd *cobra.Command, reader *bufio.Reader, provider domain.AIProvider) string {
	if !provider.RequiresAPIKey() {
		return ""
	}
	cmd.Print("Enter API key (leave empty to keep the current one): ")
	key := readPassword(reader)
	cmd.Println()
	return key
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, otherwise a plain line.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
