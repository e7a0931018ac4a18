package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-crm/internal/config"
	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/ingestion"
	"github.com/jonathan/outreach-crm/internal/pipeline"
)

var (
	bulkIngestStatus      string
	bulkIngestConcurrency int
)

var bulkIngestCmd = &cobra.Command{
	Use:   "bulk-ingest",
	Short: "Fetch website snapshots for all leads with a website URL",
	Long:  `Iterate over stored leads and capture a fresh website snapshot for each one that has a website URL. Leads without a URL are skipped.`,
	RunE:  runBulkIngest,
}

func init() {
	bulkIngestCmd.Flags().StringVar(&bulkIngestStatus, "status", "", "Only ingest leads with this status")
	bulkIngestCmd.Flags().IntVar(&bulkIngestConcurrency, "concurrency", 4, "Number of concurrent fetches")
	rootCmd.AddCommand(bulkIngestCmd)
}

func runBulkIngest(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	fetcher := ingestion.NewFetcher(cfg.UseBrowser)
	orch := pipeline.New(database, nil, nil, nil, fetcher)

	leads, _, err := database.ListLeads(ctx, db.ListLeadsOptions{
		Status: bulkIngestStatus,
		Limit:  10000,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkIngestConcurrency)

	var ingested, skipped int
	for i := range leads {
		lead := leads[i]
		if lead.WebsiteURL == nil || *lead.WebsiteURL == "" {
			skipped++
			continue
		}
		ingested++

		g.Go(func() error {
			result, err := orch.IngestWebsite(gctx, lead.ID)
			if err != nil {
				// One bad site must not abort the batch.
				log.Printf("bulk-ingest: lead %s (%s) failed: %v", lead.ID, lead.Company, err)
				return nil
			}
			log.Printf("bulk-ingest: lead %s (%s) snapshot %s, %d chars",
				lead.ID, lead.Company, result.SnapshotID, result.RawTextLength)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("bulk-ingest: done, %d leads ingested, %d skipped (no website URL)", ingested, skipped)
	return nil
}
