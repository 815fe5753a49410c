package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/config"
	"entrezharvest/pkg/entrez"
	errs "entrezharvest/pkg/errors"
	"entrezharvest/pkg/harvester"
	"entrezharvest/pkg/logger"
	"entrezharvest/pkg/storage"
)

type stubClient struct {
	mu           sync.Mutex
	searchErrs   map[string]error
	counts       map[string]int
	pageStartSeq map[string][]int
}

func (s *stubClient) Search(ctx context.Context, collection, term string) (*entrez.SearchSession, error) {
	if err := s.searchErrs[collection]; err != nil {
		return nil, err
	}
	return &entrez.SearchSession{Collection: collection, Term: term, Count: s.counts[collection]}, nil
}

func (s *stubClient) FetchPage(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
	s.mu.Lock()
	if s.pageStartSeq == nil {
		s.pageStartSeq = make(map[string][]int)
	}
	s.pageStartSeq[session.Collection] = append(s.pageStartSeq[session.Collection], start)
	s.mu.Unlock()

	var b strings.Builder
	for i := 0; i < length; i++ {
		fmt.Fprintf(&b, "ACCESSION   %s%05d\n//\n", strings.ToUpper(session.Collection), start+i)
	}
	return b.String(), nil
}

func (s *stubClient) FetchIDs(ctx context.Context, collection, term string, max int) ([]string, error) {
	return nil, nil
}

func (s *stubClient) FetchSummaries(ctx context.Context, collection string, ids []string) ([]entrez.RecordSummary, error) {
	return nil, nil
}

func newTestPool(t *testing.T, client harvester.SessionClient, workers int) *Pool {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Harvest.BatchSize = 10
	cfg.Harvest.PageDelay = 0
	cfg.Output.BaseDirectory = t.TempDir()

	store, err := storage.NewManager(cfg.Output.BaseDirectory, logger.NewTestLogger())
	require.NoError(t, err)

	h := harvester.New(client, store, cfg, logger.NewTestLogger())
	return NewPool(h, client, workers, logger.NewTestLogger())
}

func TestPoolRunsAllCollections(t *testing.T) {
	client := &stubClient{
		counts: map[string]int{"protein": 25, "pubmed": 10, "gene": 5},
	}
	pool := newTestPool(t, client, 3)

	results := pool.Run(context.Background(), []string{"protein", "pubmed", "gene"}, "endolysin")
	require.Len(t, results, 3)

	// Sorted by collection name
	assert.Equal(t, "gene", results[0].Collection)
	assert.Equal(t, "protein", results[1].Collection)
	assert.Equal(t, "pubmed", results[2].Collection)

	for _, result := range results {
		require.NoError(t, result.Err, result.Collection)
		assert.Equal(t, client.counts[result.Collection], result.Manifest.RecordsPersisted, result.Collection)
	}
}

func TestPoolPagesStaySequentialWithinCollection(t *testing.T) {
	client := &stubClient{
		counts: map[string]int{"protein": 35, "pubmed": 25},
	}
	pool := newTestPool(t, client, 2)

	results := pool.Run(context.Background(), []string{"protein", "pubmed"}, "endolysin")
	require.Len(t, results, 2)

	assert.Equal(t, []int{0, 10, 20, 30}, client.pageStartSeq["protein"])
	assert.Equal(t, []int{0, 10, 20}, client.pageStartSeq["pubmed"])
}

func TestPoolFailedSearchDoesNotStopOthers(t *testing.T) {
	client := &stubClient{
		counts: map[string]int{"protein": 10},
		searchErrs: map[string]error{
			"pubmed": &errs.Error{Type: errs.ErrorTypeBadQuery, Message: "rejected", Code: 400},
		},
	}
	pool := newTestPool(t, client, 2)

	results := pool.Run(context.Background(), []string{"protein", "pubmed"}, "endolysin")
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 10, results[0].Manifest.RecordsPersisted)
	assert.Error(t, results[1].Err)
}

func TestPoolWorkerFloor(t *testing.T) {
	client := &stubClient{counts: map[string]int{"protein": 5}}
	pool := newTestPool(t, client, 0)

	results := pool.Run(context.Background(), []string{"protein"}, "endolysin")
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}
