// Command studyrag is a study assistant over local documents.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/studyrag/internal/app"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	cli.SetVersion(version)
	os.Exit(cli.Execute(context.Background(), buildServices))
}

// buildServices adapts the application container to the CLI.
func buildServices(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	c, err := app.New(ctx, app.Options{
		ConfigDir: opts.ConfigDir,
		Ephemeral: opts.Ephemeral,
	})
	if err != nil {
		return nil, err
	}

	svc := &cli.Services{
		Settings:    c.Settings,
		Prompts:     c.Prompts,
		Metrics:     c.MetricsHandler(),
		InboxDir:    c.AppSettings.Storage.InboxDir,
		Unavailable: c.CoreErr,
		Warnings:    c.Warnings,
		Close:       c.Close,
	}
	// Assigned only when built so the interfaces stay nil otherwise.
	if c.Ingestion != nil {
		svc.Ingestion = c.Ingestion
	}
	if c.Retrieval != nil {
		svc.Retrieval = c.Retrieval
	}
	if c.Query != nil {
		svc.Query = c.Query
	}
	return svc, nil
}
