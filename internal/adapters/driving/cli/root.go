// Package cli provides the studyrag command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services are the components a command run can use.
// Ingestion, Retrieval and Query are nil when Unavailable is set.
type Services struct {
	Ingestion driving.IngestionService
	Retrieval driving.RetrievalService
	Query     driving.QueryService
	Settings  driving.SettingsService
	Prompts   driven.PromptStore
	Metrics   http.Handler
	InboxDir  string

	// Unavailable explains why the index services could not be built.
	Unavailable error

	// Warnings are printed once before the command runs.
	Warnings []string

	// Close releases the services after the command.
	Close func() error
}

// Options are the global flags passed to the Builder.
type Options struct {
	ConfigDir string
	Ephemeral bool
}

// Builder creates the services for a run.
type Builder func(ctx context.Context, opts Options) (*Services, error)

// Services used by commands. Set once per run by the root command.
var (
	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
	queryService     driving.QueryService
	settingsService  driving.SettingsService
	promptStore      driven.PromptStore
	metricsHandler   http.Handler
	inboxDir         string
	unavailableErr   error
	closeServices    func() error
)

// build is the active Builder. Nil leaves the services untouched.
var build Builder

// errNotConfigured marks a command whose service was never built.
var errNotConfigured = errors.New("service unavailable")

// Global flags.
var (
	verbose   bool
	configDir string
	ephemeral bool
)

// skipServices marks commands that run without building services.
const skipServices = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "studyrag",
	Short: "Study assistant over your own documents",
	Long: `studyrag ingests PDF, text and Word files into a local vector index and
answers questions, generates quizzes and writes summaries grounded in them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.studyrag)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep settings and index in memory for this run")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, b Builder) int {
	build = b
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("closing services: %v", err)
			}
			closeServices = nil
		}
		logger.Sync()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln(styles.Error.Render("Error: " + err.Error()))
		return ExitCode(err)
	}
	return 0
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if build == nil || cmd.Annotations[skipServices] == "true" {
		return nil
	}

	svc, err := build(cmd.Context(), Options{ConfigDir: configDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	applyServices(svc)

	for _, w := range svc.Warnings {
		logger.Debug("%s", w)
	}
	return nil
}

func applyServices(svc *Services) {
	ingestionService = svc.Ingestion
	retrievalService = svc.Retrieval
	queryService = svc.Query
	settingsService = svc.Settings
	promptStore = svc.Prompts
	metricsHandler = svc.Metrics
	inboxDir = svc.InboxDir
	unavailableErr = svc.Unavailable
	closeServices = svc.Close
}

// notConfigured reports a missing service, with the reason when known.
func notConfigured(name string) error {
	if unavailableErr != nil {
		return fmt.Errorf("%s service not configured: %w", name, unavailableErr)
	}
	return fmt.Errorf("%s service not configured: %w", name, errNotConfigured)
}
