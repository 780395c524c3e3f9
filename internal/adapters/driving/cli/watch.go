package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/watch"
)

var (
	watchDir      string
	watchDebounce time.Duration
	watchScan     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest files dropped into the inbox",
	Long: `Watches the inbox directory (storage.inbox_dir, default ~/.studyrag/inbox)
and ingests every supported file created or copied into it. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "directory to watch (default from settings)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is ingested")
	watchCmd.Flags().BoolVar(&watchScan, "scan", true, "ingest files already in the directory at start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion")
	}

	dir := watchDir
	if dir == "" {
		dir = inboxDir
	}
	if dir == "" {
		return fmt.Errorf("no inbox directory configured; use --dir")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(dir, ingestionService,
		watch.WithDebounce(watchDebounce),
		watch.WithInitialScan(watchScan),
		watch.WithEventHandler(func(e watch.Event) {
			if e.Err != nil {
				cmd.Printf("%s %s: %v\n", styles.Error.Render("✗"), e.Path, e.Err)
				return
			}
			cmd.Printf("%s %s %s\n", styles.Success.Render("✓"), e.Result.Filename,
				styles.Muted.Render(fmt.Sprintf("(%s, %d chunks)", e.Result.DocumentID, e.Result.ChunkCount)))
		}),
	)

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Dir())
	return w.Run(ctx)
}
