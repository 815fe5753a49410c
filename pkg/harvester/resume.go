package harvester

import (
	"context"
	"errors"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/entrez"
	"entrezharvest/pkg/extract"
	"entrezharvest/pkg/failure"
	"entrezharvest/pkg/retry"
	"entrezharvest/pkg/storage"
)

// Resume re-fetches the pages recorded by failure descriptors in the
// collection directory. When pages is non-empty only those page numbers are
// attempted. A descriptor is deleted only after at least one record from
// its page was persisted. Returns the number of records recovered.
//
// The session must come from a fresh search: old session handles expire, so
// callers re-search and pass the new session in.
func (h *Harvester) Resume(ctx context.Context, session *entrez.SearchSession, pages ...int) (int, error) {
	collection := session.Collection
	format := catalog.Format(collection)
	kind := format.Kind()

	dir, err := h.storage.CollectionDir(collection)
	if err != nil {
		return 0, err
	}
	failStore := failure.NewStore(dir)

	descriptors, skipped, err := failStore.List()
	if err != nil {
		return 0, err
	}
	for _, name := range skipped {
		h.logger.WarnWithFields("skipping unparseable failure descriptor", map[string]interface{}{
			"collection": collection,
			"file":       name,
		})
	}

	if len(pages) > 0 {
		wanted := make(map[int]bool, len(pages))
		for _, p := range pages {
			wanted[p] = true
		}
		filtered := descriptors[:0]
		for _, d := range descriptors {
			if wanted[d.Page] {
				filtered = append(filtered, d)
			}
		}
		descriptors = filtered
	}

	if len(descriptors) == 0 {
		h.logger.InfoWithFields("no failed pages to resume", map[string]interface{}{
			"collection": collection,
		})
		return 0, nil
	}

	h.logger.InfoWithFields("resuming failed pages", map[string]interface{}{
		"collection": collection,
		"pages":      len(descriptors),
	})

	// Identifier ordinals restart at 1 for every resume invocation
	ordinal := 1
	recovered := 0
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return recovered, err
		}

		payload, err := h.client.FetchPage(ctx, session, format, d.FirstRecord-1, d.RecordCount())
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return recovered, err
			}
			h.logger.ErrorWithFields("page failed again, keeping descriptor", map[string]interface{}{
				"collection": collection,
				"page":       d.Page,
				"error":      err.Error(),
			})
			if err := retry.Wait(ctx, h.cfg.Harvest.PageDelay); err != nil {
				return recovered, err
			}
			continue
		}

		persisted := 0
		for _, record := range extract.Segment(payload, kind, collection) {
			recordID := extract.DeriveIdentifier(record, kind, collection, ordinal)
			ordinal++

			if _, err := h.storage.SaveRecord(collection, recordID, record, format); err != nil {
				return recovered, err
			}
			persisted++
		}

		if persisted > 0 {
			if err := failStore.Delete(d.Page); err != nil {
				return recovered, err
			}
			recovered += persisted
			h.logger.InfoWithFields("page recovered", map[string]interface{}{
				"collection": collection,
				"page":       d.Page,
				"records":    persisted,
			})
		} else {
			h.logger.WarnWithFields("page fetched but yielded no records, keeping descriptor", map[string]interface{}{
				"collection": collection,
				"page":       d.Page,
			})
		}

		if err := retry.Wait(ctx, h.cfg.Harvest.PageDelay); err != nil {
			return recovered, err
		}
	}

	return recovered, nil
}

// FailedPages lists the resumable failure descriptors for a collection
func (h *Harvester) FailedPages(collection string) ([]*failure.Descriptor, error) {
	dir, err := h.storage.CollectionDir(collection)
	if err != nil {
		return nil, err
	}
	descriptors, skipped, err := failure.NewStore(dir).List()
	if err != nil {
		return nil, err
	}
	for _, name := range skipped {
		h.logger.WarnWithFields("skipping unparseable failure descriptor", map[string]interface{}{
			"collection": collection,
			"file":       name,
		})
	}
	return descriptors, nil
}

// Preview looks up what a harvest of one collection would cover without
// downloading payloads: the result count, the available ID list and a few
// record summaries.
func (h *Harvester) Preview(ctx context.Context, collection, term string) storage.PreviewInfo {
	info := storage.PreviewInfo{
		Collection: collection,
		Format:     catalog.Format(collection),
	}

	session, err := h.client.Search(ctx, collection, term)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.TotalCount = session.Count
	if session.Count == 0 {
		return info
	}

	ids, err := h.client.FetchIDs(ctx, collection, term, session.Count)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.AvailableIDs = len(ids)

	sample := h.cfg.Harvest.SampleSize
	if sample > len(ids) {
		sample = len(ids)
	}
	if sample > 0 {
		summaries, err := h.client.FetchSummaries(ctx, collection, ids[:sample])
		if err != nil {
			info.Err = err.Error()
			return info
		}
		info.Samples = summaries
	}

	return info
}
