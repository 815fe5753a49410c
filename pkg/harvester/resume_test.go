package harvester

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/entrez"
	errs "entrezharvest/pkg/errors"
	"entrezharvest/pkg/failure"
)

func writeDescriptor(t *testing.T, dir string, page, first, last int) {
	t.Helper()
	err := failure.NewStore(dir).Write(&failure.Descriptor{
		Page:        page,
		FirstRecord: first,
		LastRecord:  last,
		Message:     "server returned status 503",
	})
	require.NoError(t, err)
}

func TestResumeRecoversFailedPage(t *testing.T) {
	client := &mockClient{
		fetchPageFn: func(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
			return flatfilePayload(start+1, length), nil
		},
	}
	h, store, _ := testHarvester(t, client)

	dir, err := store.CollectionDir("protein")
	require.NoError(t, err)
	writeDescriptor(t, dir, 17, 801, 850)

	session := &entrez.SearchSession{Collection: "protein", Term: "endolysin", Count: 2733}
	recovered, err := h.Resume(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 50, recovered)

	// The recorded range drives the fetch: zero-based start 800, length 50
	require.Len(t, client.fetchCalls, 1)
	assert.Equal(t, fetchCall{Start: 800, Length: 50}, client.fetchCalls[0])

	// Descriptor removed after successful persistence
	_, err = os.Stat(filepath.Join(dir, "error_batch_17.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestResumeKeepsDescriptorOnRepeatFailure(t *testing.T) {
	client := &mockClient{
		fetchPageFn: func(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
			return "", &errs.Error{Type: errs.ErrorTypeServerError, Message: "still down", Code: 503}
		},
	}
	h, store, _ := testHarvester(t, client)

	dir, err := store.CollectionDir("protein")
	require.NoError(t, err)
	writeDescriptor(t, dir, 3, 101, 150)

	session := &entrez.SearchSession{Collection: "protein", Term: "endolysin", Count: 500}
	recovered, err := h.Resume(context.Background(), session)
	require.NoError(t, err, "a page failing again is not a resume error")
	assert.Equal(t, 0, recovered)

	_, err = os.Stat(filepath.Join(dir, "error_batch_3.txt"))
	assert.NoError(t, err, "descriptor must survive a failed retry")
}

func TestResumeKeepsDescriptorWhenNothingPersisted(t *testing.T) {
	client := &mockClient{
		fetchPageFn: func(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
			return "   ", nil
		},
	}
	h, store, _ := testHarvester(t, client)

	dir, err := store.CollectionDir("protein")
	require.NoError(t, err)
	writeDescriptor(t, dir, 2, 51, 100)

	session := &entrez.SearchSession{Collection: "protein", Term: "endolysin", Count: 500}
	recovered, err := h.Resume(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0, recovered)

	_, err = os.Stat(filepath.Join(dir, "error_batch_2.txt"))
	assert.NoError(t, err, "descriptor deleted only after at least one record persisted")
}

func TestResumePageFilter(t *testing.T) {
	client := &mockClient{
		fetchPageFn: func(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
			return flatfilePayload(start+1, length), nil
		},
	}
	h, store, _ := testHarvester(t, client)

	dir, err := store.CollectionDir("protein")
	require.NoError(t, err)
	writeDescriptor(t, dir, 2, 51, 100)
	writeDescriptor(t, dir, 5, 201, 250)
	writeDescriptor(t, dir, 9, 401, 450)

	session := &entrez.SearchSession{Collection: "protein", Term: "endolysin", Count: 500}
	recovered, err := h.Resume(context.Background(), session, 2, 9)
	require.NoError(t, err)
	assert.Equal(t, 100, recovered)
	require.Len(t, client.fetchCalls, 2)

	// Page 5 untouched
	_, err = os.Stat(filepath.Join(dir, "error_batch_5.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "error_batch_2.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestResumeOrdinalsRestartPerInvocation(t *testing.T) {
	client := &mockClient{
		fetchPageFn: func(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
			// Unlabeled records force the ordinal fallback
			return fmt.Sprintf("<record>a %d</record>\n<record>b %d</record>", start, start), nil
		},
	}
	h, store, _ := testHarvester(t, client)

	dir, err := store.CollectionDir("taxonomy")
	require.NoError(t, err)
	writeDescriptor(t, dir, 4, 7, 8)

	session := &entrez.SearchSession{Collection: "taxonomy", Term: "endolysin", Count: 100}
	recovered, err := h.Resume(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 2, recovered)

	_, err = os.Stat(filepath.Join(dir, "taxonomy_record_000001.xml"))
	assert.NoError(t, err, "resume ordinals start at 1")
	_, err = os.Stat(filepath.Join(dir, "taxonomy_record_000002.xml"))
	assert.NoError(t, err)
}

func TestResumeNothingToDo(t *testing.T) {
	client := &mockClient{
		fetchPageFn: func(ctx context.Context, session *entrez.SearchSession, format catalog.FormatPair, start, length int) (string, error) {
			t.Error("No fetch expected without descriptors")
			return "", nil
		},
	}
	h, _, _ := testHarvester(t, client)

	session := &entrez.SearchSession{Collection: "protein", Term: "endolysin", Count: 500}
	recovered, err := h.Resume(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0, recovered)
}

func TestPreview(t *testing.T) {
	client := &mockClient{
		searchFn: func(ctx context.Context, collection, term string) (*entrez.SearchSession, error) {
			return &entrez.SearchSession{Collection: collection, Term: term, Count: 42}, nil
		},
	}
	h, _, _ := testHarvester(t, client)

	info := h.Preview(context.Background(), "protein", "endolysin")
	assert.Empty(t, info.Err)
	assert.Equal(t, "protein", info.Collection)
	assert.Equal(t, 42, info.TotalCount)
}

func TestPreviewSearchError(t *testing.T) {
	client := &mockClient{
		searchFn: func(ctx context.Context, collection, term string) (*entrez.SearchSession, error) {
			return nil, &errs.Error{Type: errs.ErrorTypeBadQuery, Message: "rejected", Code: 400}
		},
	}
	h, _, _ := testHarvester(t, client)

	info := h.Preview(context.Background(), "protein", "endolysin")
	assert.NotEmpty(t, info.Err)
	assert.Equal(t, 0, info.TotalCount)
}
