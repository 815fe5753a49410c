package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/entrez"
	"entrezharvest/pkg/logger"
)

var listRemote bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the collections this tool knows how to download",
	Long: `List the supported collections grouped by category, with the download
format each one uses. With --remote the remote service is asked for its
full collection list instead; collections missing from the local catalog
fall back to the default XML format when harvested.`,
	Example: `  # Show the local catalog
  entrezharvest list

  # Ask the remote service what it exposes
  entrezharvest list --remote`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listRemote, "remote", false, "query the remote service for its collection list")
}

func runList(cmd *cobra.Command, args []string) error {
	if !listRemote {
		for _, category := range catalog.Categories() {
			fmt.Printf("%s:\n", category)
			for _, collection := range catalog.CollectionsByCategory(category) {
				entry, _ := catalog.Lookup(collection)
				fmt.Printf("  %-18s %-14s %s\n", collection,
					fmt.Sprintf("%s/%s", entry.Format.RetType, entry.Format.RetMode),
					entry.Description)
			}
			fmt.Println()
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := entrez.NewClient(cfg, logger.GetLogger())
	names, err := client.ListDatabases(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		marker := " "
		if catalog.IsSupported(name) {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	fmt.Printf("\n%d collections; * = in local catalog\n", len(names))
	return nil
}
