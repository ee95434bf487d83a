package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-intel/apperrors"
	"media-intel/database"
	"media-intel/metrics"
	"media-intel/models"
	"media-intel/normalizer"
	"media-intel/store"
)

const workedExample = "Date,Platform,Sentiment,Engagements\n" +
	"2024-01-01,X,Positive,10\n" +
	"bad-date,X,Negative,5\n" +
	"2024-01-02,X,Negative,abc\n"

func newTestIngestor(t *testing.T) (*Ingestor, *metrics.Metrics) {
	t.Helper()
	db, err := database.Open("ingest-"+uuid.NewString(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	m := metrics.New()
	s := store.NewDatasetStore(db, 4, zap.NewNop())
	return NewIngestor(normalizer.New(zap.NewNop()), s, m, zap.NewNop()), m
}

func TestIngestStoresNormalisedDataset(t *testing.T) {
	ing, m := newTestIngestor(t)
	ctx := context.Background()

	res, err := ing.Ingest(ctx, "mentions.csv", []byte(workedExample))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, DatasetID([]byte(workedExample)), res.Dataset.ID)
	assert.Equal(t, 2, res.Dataset.RowCount)
	assert.Equal(t, 1, res.Dataset.DroppedRows)
	assert.Equal(t, []string{"Media Type", "Location"}, store.SplitColumns(res.Dataset.Synthesized))
	assert.Equal(t, []string{"X"}, res.Options.Platforms)
	assert.Equal(t, []string{"Positive", "Negative"}, res.Options.Sentiments)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DroppedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("ok")))
}

func TestIngestSameBytesHitsCache(t *testing.T) {
	ing, m := newTestIngestor(t)
	ctx := context.Background()

	first, err := ing.Ingest(ctx, "a.csv", []byte(workedExample))
	require.NoError(t, err)
	second, err := ing.Ingest(ctx, "b.csv", []byte(workedExample))
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Dataset.ID, second.Dataset.ID)
	assert.Equal(t, "a.csv", second.Dataset.Filename)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))

	all, err := ing.Datasets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngestFormatErrorReturnsEmptyDataset(t *testing.T) {
	ing, m := newTestIngestor(t)

	res, err := ing.Ingest(context.Background(), "broken.csv", []byte("Platform,Sentiment\nX,Positive\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsDataFormat(err))
	require.NotNil(t, res)
	assert.Equal(t, "broken.csv", res.Dataset.Filename)
	assert.Zero(t, res.Dataset.RowCount)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("format_error")))
}

func TestViewFiltersAndAggregates(t *testing.T) {
	ing, _ := newTestIngestor(t)
	ctx := context.Background()

	res, err := ing.Ingest(ctx, "mentions.csv", []byte(workedExample))
	require.NoError(t, err)

	v, err := ing.View(ctx, res.Dataset.ID, models.FilterSelection{Platform: "X"})
	require.NoError(t, err)
	assert.Len(t, v.Records, 2)
	assert.Equal(t, int64(10), v.Aggregates.TotalEngagements)
	total, ok := v.Aggregates.PlatformEngagements.Get("X")
	require.True(t, ok)
	assert.Equal(t, int64(10), total)

	v, err = ing.View(ctx, res.Dataset.ID, models.FilterSelection{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, v.Empty())
	assert.True(t, v.Aggregates.Empty())
	assert.Equal(t, []string{"X"}, v.Options.Platforms, "options come from the whole dataset")
}

func TestViewUnknownDataset(t *testing.T) {
	ing, _ := newTestIngestor(t)
	_, err := ing.View(context.Background(), "missing", models.FilterSelection{})
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

func TestRemove(t *testing.T) {
	ing, _ := newTestIngestor(t)
	ctx := context.Background()
	res, err := ing.Ingest(ctx, "mentions.csv", []byte(workedExample))
	require.NoError(t, err)

	require.NoError(t, ing.Remove(ctx, res.Dataset.ID))
	_, err = ing.Dataset(ctx, res.Dataset.ID)
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

func TestIngestIgnoresCallerCancellation(t *testing.T) {
	ing, _ := newTestIngestor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := ing.Ingest(ctx, "mentions.csv", []byte(workedExample))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dataset.RowCount)

	ds, err := ing.Dataset(context.Background(), res.Dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, "mentions.csv", ds.Filename)
}
