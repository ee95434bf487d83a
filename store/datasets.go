// Package store keeps normalised datasets in the in-memory database, keyed by
// the content hash of the uploaded file and bounded in size.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"media-intel/apperrors"
	"media-intel/logger"
	"media-intel/models"
)

const insertBatchSize = 500

// DatasetStore is a bounded, least-recently-used cache of datasets.
type DatasetStore struct {
	db       *gorm.DB
	capacity int
	logger   *zap.Logger
	now      func() time.Time
}

// NewDatasetStore creates a store holding at most capacity datasets.
func NewDatasetStore(db *gorm.DB, capacity int, l *zap.Logger) *DatasetStore {
	if capacity < 1 {
		capacity = 1
	}
	return &DatasetStore{
		db:       db,
		capacity: capacity,
		logger:   logger.Component(l, "store"),
		now:      time.Now,
	}
}

// Save stores a dataset and its records, replacing any previous copy with the
// same ID, then evicts least recently used datasets beyond capacity.
func (s *DatasetStore) Save(ctx context.Context, ds *models.Dataset, records []models.Mention) error {
	now := s.now().UTC()
	ds.CreatedAt = now
	ds.LastUsedAt = now
	ds.RowCount = len(records)

	rows := make([]models.MentionRow, len(records))
	for i, r := range records {
		rows[i] = models.MentionRow{
			DatasetID:   ds.ID,
			Seq:         i,
			DateText:    r.Date.Format(time.RFC3339Nano),
			DateString:  r.DateString,
			Engagements: r.Engagements,
			Platform:    r.Platform,
			Sentiment:   r.Sentiment,
			MediaType:   r.MediaType,
			Location:    r.Location,
		}
	}

	var evicted []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDataset(tx, ds.ID); err != nil {
			return err
		}
		if err := tx.Create(ds).Error; err != nil {
			return fmt.Errorf("insert dataset: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert records: %w", err)
			}
		}

		var ids []string
		if err := tx.Model(&models.Dataset{}).Order("last_used_at DESC").Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("list datasets: %w", err)
		}
		if len(ids) <= s.capacity {
			return nil
		}
		for _, old := range ids[s.capacity:] {
			if err := deleteDataset(tx, old); err != nil {
				return err
			}
			evicted = append(evicted, shortID(old))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save dataset %s: %w", shortID(ds.ID), err)
	}

	s.logger.Info("dataset stored",
		zap.String("dataset", shortID(ds.ID)),
		zap.Int("records", len(records)),
		zap.Strings("evicted", evicted))
	return nil
}

// Get returns dataset metadata and marks it as recently used.
func (s *DatasetStore) Get(ctx context.Context, id string) (*models.Dataset, error) {
	var ds models.Dataset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("dataset %s: %w", shortID(id), apperrors.ErrDatasetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset %s: %w", shortID(id), err)
	}

	ds.LastUsedAt = s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.Dataset{}).Where("id = ?", id).
		Update("last_used_at", ds.LastUsedAt).Error; err != nil {
		return nil, fmt.Errorf("touch dataset %s: %w", shortID(id), err)
	}
	return &ds, nil
}

// Load returns the dataset metadata and its records in normalised order.
func (s *DatasetStore) Load(ctx context.Context, id string) (*models.Dataset, []models.Mention, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var rows []models.MentionRow
	if err := s.db.WithContext(ctx).Where("dataset_id = ?", id).Order("seq").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("load records of %s: %w", shortID(id), err)
	}

	records := make([]models.Mention, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(time.RFC3339Nano, row.DateText)
		if err != nil {
			return nil, nil, fmt.Errorf("decode record %d of %s: %w", row.Seq, shortID(id), err)
		}
		records = append(records, models.Mention{
			Date:        date,
			DateString:  row.DateString,
			Engagements: row.Engagements,
			Platform:    row.Platform,
			Sentiment:   row.Sentiment,
			MediaType:   row.MediaType,
			Location:    row.Location,
		})
	}
	return ds, records, nil
}

// Exists reports whether id is stored, without touching it.
func (s *DatasetStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Dataset{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("lookup dataset %s: %w", shortID(id), err)
	}
	return n > 0, nil
}

// List returns every stored dataset, most recently used first.
func (s *DatasetStore) List(ctx context.Context) ([]models.Dataset, error) {
	var out []models.Dataset
	if err := s.db.WithContext(ctx).Order("last_used_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return out, nil
}

// SetSummary records the latest generated summary of a dataset.
func (s *DatasetStore) SetSummary(ctx context.Context, id, summary string) error {
	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Dataset{}).Where("id = ?", id).
		Updates(map[string]interface{}{"summary": summary, "summary_at": now})
	if res.Error != nil {
		return fmt.Errorf("save summary of %s: %w", shortID(id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("dataset %s: %w", shortID(id), apperrors.ErrDatasetNotFound)
	}
	return nil
}

// Delete removes a dataset and its records.
func (s *DatasetStore) Delete(ctx context.Context, id string) error {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("dataset %s: %w", shortID(id), apperrors.ErrDatasetNotFound)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteDataset(tx, id)
	})
}

func deleteDataset(tx *gorm.DB, id string) error {
	if err := tx.Where("dataset_id = ?", id).Delete(&models.MentionRow{}).Error; err != nil {
		return fmt.Errorf("delete records of %s: %w", shortID(id), err)
	}
	if err := tx.Where("id = ?", id).Delete(&models.Dataset{}).Error; err != nil {
		return fmt.Errorf("delete dataset %s: %w", shortID(id), err)
	}
	return nil
}

// SplitColumns decodes Dataset.Synthesized.
func SplitColumns(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// JoinColumns encodes column names for Dataset.Synthesized.
func JoinColumns(cols []string) string {
	return strings.Join(cols, ",")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
