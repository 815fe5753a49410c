package harvester

import (
	"context"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/entrez"
)

// SessionClient is the remote surface the harvester depends on. The
// concrete implementation is entrez.Client; tests substitute their own.
type SessionClient interface {
	Search(ctx context.Context, collection, term string) (*entrez.SearchSession, error)
	FetchPage(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error)
	FetchIDs(ctx context.Context, collection, term string, max int) ([]string, error)
	FetchSummaries(ctx context.Context, collection string, ids []string) ([]entrez.RecordSummary, error)
}
