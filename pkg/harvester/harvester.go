// Package harvester drives the full download pipeline for one collection:
// page computation, fetching, record segmentation, persistence, failure
// descriptors and resumption.
package harvester

import (
	"context"
	"errors"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/config"
	"entrezharvest/pkg/entrez"
	"entrezharvest/pkg/extract"
	"entrezharvest/pkg/failure"
	"entrezharvest/pkg/logger"
	"entrezharvest/pkg/retry"
	"entrezharvest/pkg/storage"
)

// Harvester downloads all pages of a search session and persists every
// record individually. Fetch failures are page-local and leave a durable
// descriptor; persistence failures abort the run.
type Harvester struct {
	client  SessionClient
	storage *storage.Manager
	cfg     *config.Config
	logger  logger.Logger
}

// New creates a harvester over a session client and storage manager
func New(client SessionClient, store *storage.Manager, cfg *config.Config, log logger.Logger) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Harvester{
		client:  client,
		storage: store,
		cfg:     cfg,
		logger:  log,
	}
}

// Harvest downloads every page of a search session sequentially and returns
// the manifest of what was persisted. A page whose fetch fails after retries
// gets a failure descriptor and the run moves on; only persistence errors
// and cancellation stop the run. The statistics report is written before
// returning whenever at least one page was attempted.
func (h *Harvester) Harvest(ctx context.Context, session *entrez.SearchSession) (*storage.Manifest, error) {
	collection := session.Collection
	format := catalog.Format(collection)
	kind := format.Kind()

	pages := ComputePages(session.Count, h.cfg.Harvest.MaxRecordsPerCollection, h.cfg.Harvest.BatchSize)
	target := 0
	for _, page := range pages {
		target += page.Length
	}

	manifest := storage.NewManifest(collection, session.Term, format, session.Count, target)
	if len(pages) == 0 {
		h.logger.InfoWithFields("nothing to download", map[string]interface{}{
			"collection": collection,
			"count":      session.Count,
		})
		return manifest, nil
	}

	dir, err := h.storage.CollectionDir(collection)
	if err != nil {
		return manifest, err
	}
	failStore := failure.NewStore(dir)

	h.logger.InfoWithFields("starting harvest", map[string]interface{}{
		"collection": collection,
		"count":      session.Count,
		"target":     target,
		"pages":      len(pages),
		"format":     format.RetType,
	})

	ordinal := 1
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return manifest, err
		}

		payload, err := h.client.FetchPage(ctx, session, format, page.Start, page.Length)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return manifest, err
			}

			h.logger.ErrorWithFields("page failed after retries", map[string]interface{}{
				"collection": collection,
				"page":       page.Number,
				"records":    page.Length,
				"error":      err.Error(),
			})
			if writeErr := failStore.Write(&failure.Descriptor{
				Collection:  collection,
				Page:        page.Number,
				FirstRecord: page.FirstRecord(),
				LastRecord:  page.LastRecord(),
				Message:     err.Error(),
			}); writeErr != nil {
				return manifest, writeErr
			}
			manifest.AddFailedPage(page.Number)
			if err := retry.Wait(ctx, h.cfg.Harvest.PageDelay); err != nil {
				return manifest, err
			}
			continue
		}

		records := extract.Segment(payload, kind, collection)
		if len(records) == 0 {
			h.logger.WarnWithFields("page yielded no records", map[string]interface{}{
				"collection": collection,
				"page":       page.Number,
			})
		}

		for _, record := range records {
			recordID := extract.DeriveIdentifier(record, kind, collection, ordinal)
			ordinal++

			size, err := h.storage.SaveRecord(collection, recordID, record, format)
			if err != nil {
				return manifest, err
			}
			manifest.AddRecord(storage.RecordStats{
				Filename: storage.SanitizeFilename(recordID + "." + format.FileExtension()),
				RecordID: recordID,
				Size:     size,
				Page:     page.Number,
			})
		}

		h.logger.DebugWithFields("page persisted", map[string]interface{}{
			"collection": collection,
			"page":       page.Number,
			"records":    len(records),
		})

		if err := retry.Wait(ctx, h.cfg.Harvest.PageDelay); err != nil {
			return manifest, err
		}
	}

	if _, err := h.storage.WriteStatistics(manifest); err != nil {
		return manifest, err
	}

	h.logger.InfoWithFields("harvest finished", map[string]interface{}{
		"collection": collection,
		"persisted":  manifest.RecordsPersisted,
		"failed":     len(manifest.FailedPages),
	})

	return manifest, nil
}
