package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-intel/apperrors"
	"media-intel/database"
	"media-intel/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T, capacity int) *DatasetStore {
	t.Helper()
	db, err := database.Open("store-"+uuid.NewString(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s := NewDatasetStore(db, capacity, zap.NewNop())
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.now
	return s
}

func sampleRecords() []models.Mention {
	jakarta := time.FixedZone("WIB", 7*3600)
	return []models.Mention{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DateString: "2024-01-01", Engagements: 10,
			Platform: "X", Sentiment: "Positive", MediaType: models.Unknown, Location: models.Unknown},
		{Date: time.Date(2024, 1, 2, 23, 30, 0, 0, jakarta), DateString: "2024-01-02", Engagements: 0,
			Platform: "X", Sentiment: "Negative", MediaType: "Video", Location: "Jakarta"},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, 4)
	ctx := context.Background()

	ds := &models.Dataset{ID: "abc123", Filename: "mentions.csv", DroppedRows: 1, Synthesized: JoinColumns([]string{"Media Type"})}
	require.NoError(t, s.Save(ctx, ds, sampleRecords()))

	got, records, err := s.Load(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "mentions.csv", got.Filename)
	assert.Equal(t, 2, got.RowCount)
	assert.Equal(t, 1, got.DroppedRows)
	assert.Equal(t, []string{"Media Type"}, SplitColumns(got.Synthesized))

	if diff := cmp.Diff(sampleRecords(), records); diff != "" {
		t.Errorf("records differ after round trip (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2024-01-02", records[1].Day().Format(models.DateLayout))
}

func TestSaveReplacesSameID(t *testing.T) {
	s := newTestStore(t, 4)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "same"}, sampleRecords()))
	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "same"}, sampleRecords()[:1]))

	_, records, err := s.Load(ctx, "same")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveEvictsLeastRecentlyUsed(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "a"}, sampleRecords()))
	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "b"}, sampleRecords()))
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "c"}, sampleRecords()))

	ok, err := s.Exists(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok, "b was least recently used")

	all, err := s.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, d := range all {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"c", "a"}, ids)

	var orphans int64
	require.NoError(t, s.db.Model(&models.MentionRow{}).Where("dataset_id = ?", "b").Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestGetUnknownDataset(t *testing.T) {
	s := newTestStore(t, 2)
	_, _, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
}

func TestSetSummary(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "a"}, sampleRecords()))

	require.NoError(t, s.SetSummary(ctx, "a", "Fokus pada X."))
	ds, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Fokus pada X.", ds.Summary)
	assert.NotNil(t, ds.SummaryAt)

	assert.ErrorIs(t, s.SetSummary(ctx, "nope", "x"), apperrors.ErrDatasetNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &models.Dataset{ID: "a"}, sampleRecords()))

	require.NoError(t, s.Delete(ctx, "a"))
	ok, err := s.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Delete(ctx, "a"), apperrors.ErrDatasetNotFound)
}
