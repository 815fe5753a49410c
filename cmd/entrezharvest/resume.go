package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"entrezharvest/pkg/entrez"
	"entrezharvest/pkg/harvester"
	"entrezharvest/pkg/logger"
	"entrezharvest/pkg/storage"
)

var (
	// Resume command flags
	resumeTerm    string
	resumeBatches string
	resumeOutput  string
	listOnly      bool
)

// resumeCmd represents the resume command
var resumeCmd = &cobra.Command{
	Use:   "resume <collection>",
	Short: "Retry pages that failed during an earlier harvest",
	Long: `Retry the failed pages recorded in a collection's error_batch files.

A fresh search is issued first because old session handles expire; the
recorded record ranges are then fetched against the new session. An
error_batch file is removed only after at least one of its records was
persisted, so interrupting a resume never loses failure information.

The search term must match the original harvest or the recorded record
ranges will point at different records.`,
	Example: `  # Retry every failed page of the protein collection
  entrezharvest resume protein

  # Retry only specific batches
  entrezharvest resume protein --batches 3,7

  # Show failed pages without retrying them
  entrezharvest resume protein --list`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().StringVarP(&resumeTerm, "term", "t", "", "search term used in the original harvest")
	resumeCmd.Flags().StringVar(&resumeBatches, "batches", "", "comma-separated batch numbers to retry (default all)")
	resumeCmd.Flags().StringVarP(&resumeOutput, "output", "o", "", "base output directory of the original harvest")
	resumeCmd.Flags().BoolVar(&listOnly, "list", false, "list failed pages without retrying")
}

func runResume(cmd *cobra.Command, args []string) error {
	collection := args[0]

	searchTerm = resumeTerm
	outputDir = resumeOutput
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pages, err := parsePageList(resumeBatches)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.GetLogger()
	client := entrez.NewClient(cfg, log)
	store, err := storage.NewManager(cfg.Output.BaseDirectory, log)
	if err != nil {
		return err
	}
	h := harvester.New(client, store, cfg, log)

	if listOnly {
		descriptors, err := h.FailedPages(collection)
		if err != nil {
			return err
		}
		if len(descriptors) == 0 {
			fmt.Printf("No failed pages for %s\n", collection)
			return nil
		}
		fmt.Printf("%-8s %-20s %-10s %s\n", "Batch", "Records", "Count", "Failed at")
		for _, d := range descriptors {
			fmt.Printf("%-8d %-20s %-10d %s\n", d.Page,
				fmt.Sprintf("%d-%d", d.FirstRecord, d.LastRecord),
				d.RecordCount(), d.OccurredAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	session, err := client.Search(ctx, collection, cfg.Harvest.SearchTerm)
	if err != nil {
		return fmt.Errorf("search failed, cannot resume: %w", err)
	}

	recovered, err := h.Resume(ctx, session, pages...)
	if err != nil {
		return err
	}

	fmt.Printf("Recovered %d records for %s\n", recovered, collection)
	return nil
}
