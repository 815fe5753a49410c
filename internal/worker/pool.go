// Package worker runs harvests for multiple collections concurrently.
// Pages within a collection stay strictly sequential; concurrency exists
// only across collections.
package worker

import (
	"context"
	"sort"
	"sync"

	"entrezharvest/pkg/harvester"
	"entrezharvest/pkg/logger"
	"entrezharvest/pkg/storage"
)

// Result is the outcome of one collection's harvest
type Result struct {
	Collection string
	Manifest   *storage.Manifest
	Err        error
}

// Pool fans collections out to a bounded number of harvest workers
type Pool struct {
	harvester *harvester.Harvester
	client    harvester.SessionClient
	workers   int
	logger    logger.Logger
}

// NewPool creates a pool running at most workers harvests at once
func NewPool(h *harvester.Harvester, client harvester.SessionClient, workers int, log logger.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{
		harvester: h,
		client:    client,
		workers:   workers,
		logger:    log,
	}
}

// Run searches and harvests every collection, returning one result per
// collection sorted by collection name. A failed collection never stops
// the others.
func (p *Pool) Run(ctx context.Context, collections []string, term string) []Result {
	jobs := make(chan string)
	results := make(chan Result, len(collections))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for collection := range jobs {
				results <- p.runOne(ctx, collection, term)
			}
		}()
	}

	for _, collection := range collections {
		jobs <- collection
	}
	close(jobs)
	wg.Wait()
	close(results)

	collected := make([]Result, 0, len(collections))
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Collection < collected[j].Collection
	})
	return collected
}

func (p *Pool) runOne(ctx context.Context, collection, term string) Result {
	if err := ctx.Err(); err != nil {
		return Result{Collection: collection, Err: err}
	}

	session, err := p.client.Search(ctx, collection, term)
	if err != nil {
		p.logger.ErrorWithFields("search failed", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		return Result{Collection: collection, Err: err}
	}

	manifest, err := p.harvester.Harvest(ctx, session)
	return Result{Collection: collection, Manifest: manifest, Err: err}
}
