package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"entrezharvest/internal/worker"
	"entrezharvest/pkg/auth"
	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/config"
	"entrezharvest/pkg/entrez"
	"entrezharvest/pkg/harvester"
	"entrezharvest/pkg/logger"
	"entrezharvest/pkg/storage"
)

var (
	// Harvest command flags
	searchTerm string
	batchSize  int
	maxRecords int
	outputDir  string
	concurrent int
	email      string
	apiKey     string
	preview    bool
)

// defaultCollections mirrors the collections a metadata survey typically
// covers: sequences, literature, genes, samples and runs
var defaultCollections = []string{
	"protein", "nucleotide", "pubmed", "pmc",
	"gene", "biosample", "bioproject", "sra", "structure",
}

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest [collections...]",
	Short: "Search collections and download every matching record",
	Long: `Search one or more collections for a term and download all matching
records as individual files, one directory per collection.

Each collection is searched once; the resulting session handles drive paged
fetches so the result set stays stable for the whole run. Pages within a
collection download sequentially; collections run concurrently up to the
configured limit. Pages that fail after all retries leave an error_batch
file that 'entrezharvest resume' can retry later.

Credentials come from (in order): flags, the system keyring (use
'entrezharvest auth login' to store), or the ENTREZHARVEST_EMAIL and
ENTREZHARVEST_API_KEY environment variables.`,
	Example: `  # Harvest the default collections with the default term
  entrezharvest harvest

  # Harvest two collections for a custom term
  entrezharvest harvest protein pubmed --term "holin" --output ./holin_data

  # Preview what would be downloaded without fetching payloads
  entrezharvest harvest --preview

  # Run four collections at once with larger pages
  entrezharvest harvest --concurrent 4 --batch-size 100`,
	Args: cobra.ArbitraryArgs,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().StringVarP(&searchTerm, "term", "t", "", "search term (default from config)")
	harvestCmd.Flags().IntVar(&batchSize, "batch-size", 0, "records per fetch page")
	harvestCmd.Flags().IntVar(&maxRecords, "max-records", 0, "cap on records per collection")
	harvestCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base output directory")
	harvestCmd.Flags().IntVar(&concurrent, "concurrent", 0, "collections harvested at once")
	harvestCmd.Flags().StringVar(&email, "email", "", "contact email sent with every request")
	harvestCmd.Flags().StringVar(&apiKey, "api-key", "", "API key for a higher rate allowance")
	harvestCmd.Flags().BoolVar(&preview, "preview", false, "list counts and sample records without downloading")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	collections := args
	if len(collections) == 0 {
		collections = defaultCollections
	}
	for _, collection := range collections {
		if !catalog.IsSupported(collection) {
			logger.GetLogger().WarnWithFields("collection not in catalog, using default format", map[string]interface{}{
				"collection": collection,
			})
		}
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

	if preview {
		return runPreview(ctx, h, store, collections, cfg.Harvest.SearchTerm)
	}

	pool := worker.NewPool(h, client, cfg.Harvest.ConcurrentCollections, log)
	results := pool.Run(ctx, collections, cfg.Harvest.SearchTerm)

	var outcomes []storage.SearchOutcome
	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			if errors.Is(result.Err, context.Canceled) {
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", result.Collection, result.Err)
			continue
		}
		outcomes = append(outcomes, storage.SearchOutcome{
			Collection: result.Collection,
			Found:      result.Manifest.TotalCount,
			Downloaded: result.Manifest.RecordsPersisted,
		})
		fmt.Printf("%-20s found %d, downloaded %d", result.Collection,
			result.Manifest.TotalCount, result.Manifest.RecordsPersisted)
		if n := len(result.Manifest.FailedPages); n > 0 {
			fmt.Printf(" (%d failed pages, run 'entrezharvest resume %s')", n, result.Collection)
		}
		fmt.Println()
	}

	if len(outcomes) > 0 {
		path, err := store.WriteSearchSummary(outcomes, cfg.Harvest.MaxRecordsPerCollection)
		if err != nil {
			return err
		}
		fmt.Printf("\nSummary written to %s\n", path)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failures == len(results) {
		return fmt.Errorf("all %d collections failed", failures)
	}
	return nil
}

func runPreview(ctx context.Context, h *harvester.Harvester, store *storage.Manager, collections []string, term string) error {
	var previews []storage.PreviewInfo
	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return err
		}
		info := h.Preview(ctx, collection, term)
		previews = append(previews, info)
		if info.Err != "" {
			fmt.Printf("%-20s error: %s\n", collection, info.Err)
			continue
		}
		fmt.Printf("%-20s %d records, %d IDs available\n", collection, info.TotalCount, info.AvailableIDs)
	}

	path, err := store.WritePreview(previews)
	if err != nil {
		return err
	}
	fmt.Printf("\nPreview written to %s\n", path)
	return nil
}

// loadConfig merges config file, environment, stored credentials and flags,
// then initializes logging
func loadConfig() (*config.Config, error) {
	flags := make(map[string]interface{})
	if email != "" {
		flags["email"] = email
	}
	if apiKey != "" {
		flags["api-key"] = apiKey
	}
	if searchTerm != "" {
		flags["term"] = searchTerm
	}
	if batchSize > 0 {
		flags["batch-size"] = batchSize
	}
	if maxRecords > 0 {
		flags["max-records"] = maxRecords
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrent > 0 {
		flags["concurrent"] = concurrent
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Stored credentials fill any gap left by flags, file and environment
	if cfg.Entrez.Email == "" || cfg.Entrez.APIKey == "" {
		creds, err := auth.Resolve(auth.NewEnvironmentStore(), auth.NewKeyringStore())
		if err == nil {
			if cfg.Entrez.Email == "" {
				cfg.Entrez.Email = creds.Email
			}
			if cfg.Entrez.APIKey == "" {
				cfg.Entrez.APIKey = creds.APIKey
			}
		} else if !errors.Is(err, auth.ErrNotFound) {
			return nil, err
		}
	}

	if cfg.Entrez.Email == "" {
		return nil, errors.New("no contact email configured; run 'entrezharvest auth login' or set ENTREZHARVEST_EMAIL")
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	logger.GetLogger().InfoWithFields("entrezharvest starting", map[string]interface{}{
		"version": version,
		"term":    cfg.Harvest.SearchTerm,
		"output":  cfg.Output.BaseDirectory,
	})

	return cfg, nil
}

// parsePageList parses a comma-separated list of 1-based page numbers
func parsePageList(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var page int
		if _, err := fmt.Sscanf(part, "%d", &page); err != nil || page < 1 {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		pages = append(pages, page)
	}
	return pages, nil
}
