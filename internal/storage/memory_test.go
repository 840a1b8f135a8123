package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataguard/internal/domain"
	"dataguard/pkg/testutil"
)

func datasetAt(t time.Time) *domain.Dataset {
	return domain.NewDataset(domain.DomainCustomer, "test", t,
		[]*domain.Record{testutil.Customer(0, nil)})
}

func TestMemoryDatasetStore_PutGet(t *testing.T) {
	store := NewMemoryDatasetStore()
	ds := datasetAt(testutil.BaseTime)

	require.NoError(t, store.Put(context.Background(), ds))

	got, err := store.Get(context.Background(), domain.DomainCustomer, testutil.BaseTime)
	require.NoError(t, err)
	assert.Equal(t, ds.Version(), got.Version())
	assert.Len(t, got.Records, 1)
}

func TestMemoryDatasetStore_GetMissingVersion(t *testing.T) {
	store := NewMemoryDatasetStore()

	_, err := store.Get(context.Background(), domain.DomainCustomer, testutil.BaseTime)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDatasetStore_PutReplacesSameVersion(t *testing.T) {
	store := NewMemoryDatasetStore()
	require.NoError(t, store.Put(context.Background(), datasetAt(testutil.BaseTime)))

	replacement := domain.NewDataset(domain.DomainCustomer, "test", testutil.BaseTime,
		[]*domain.Record{testutil.Customer(0, nil), testutil.Customer(1, nil)})
	require.NoError(t, store.Put(context.Background(), replacement))

	got, err := store.Get(context.Background(), domain.DomainCustomer, testutil.BaseTime)
	require.NoError(t, err)
	assert.Len(t, got.Records, 2)
}

func TestMemoryDatasetStore_LatestAndVersions(t *testing.T) {
	store := NewMemoryDatasetStore()
	older := datasetAt(testutil.BaseTime)
	newer := datasetAt(testutil.BaseTime.Add(time.Hour))
	require.NoError(t, store.Put(context.Background(), newer))
	require.NoError(t, store.Put(context.Background(), older))

	latest, err := store.Latest(context.Background(), domain.DomainCustomer)
	require.NoError(t, err)
	assert.Equal(t, newer.Version(), latest.Version())

	versions, err := store.Versions(context.Background(), domain.DomainCustomer)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].Before(versions[1]))

	_, err = store.Latest(context.Background(), domain.DomainSale)
	assert.ErrorIs(t, err, ErrNotFound)
}
