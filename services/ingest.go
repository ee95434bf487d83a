// Package services ties the normaliser, the dataset store, the filter and the
// aggregator together for the HTTP and CLI layers.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"media-intel/aggregator"
	"media-intel/apperrors"
	"media-intel/filter"
	"media-intel/logger"
	"media-intel/metrics"
	"media-intel/models"
	"media-intel/normalizer"
	"media-intel/store"
)

// Ingestion describes a stored upload.
type Ingestion struct {
	Dataset *models.Dataset      `json:"dataset"`
	Options models.FilterOptions `json:"options"`
	// Cached is true when identical bytes were already stored.
	Cached bool `json:"cached"`
}

// View is the dashboard state for one dataset and filter selection.
type View struct {
	Dataset    *models.Dataset        `json:"dataset"`
	Options    models.FilterOptions   `json:"options"`
	Selection  models.FilterSelection `json:"selection"`
	Records    []models.Mention       `json:"records"`
	Aggregates models.Aggregates      `json:"aggregates"`
}

// Empty reports whether the selection matched no records.
func (v *View) Empty() bool {
	return len(v.Records) == 0
}

// Ingestor normalises uploads and serves filtered views of stored datasets.
type Ingestor struct {
	normalizer *normalizer.Normalizer
	store      *store.DatasetStore
	metrics    *metrics.Metrics
	logger     *zap.Logger
	group      singleflight.Group
}

// NewIngestor creates an Ingestor.
func NewIngestor(n *normalizer.Normalizer, s *store.DatasetStore, m *metrics.Metrics, l *zap.Logger) *Ingestor {
	return &Ingestor{
		normalizer: n,
		store:      s,
		metrics:    m,
		logger:     logger.Component(l, "ingest"),
	}
}

// DatasetID is the content hash identifying data.
func DatasetID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Ingest stores data under its content hash. Bytes already in the store are not
// normalised again. A malformed file returns an *apperrors.DataFormatError
// together with an empty Ingestion, so callers can render the no-data state.
func (i *Ingestor) Ingest(ctx context.Context, filename string, data []byte) (*Ingestion, error) {
	id := DatasetID(data)

	// coalesced callers share one run, which ignores the first caller's cancellation
	shared := context.WithoutCancel(ctx)
	v, err, coalesced := i.group.Do(id, func() (interface{}, error) {
		return i.ingest(shared, id, filename, data)
	})
	if err != nil {
		if apperrors.IsDataFormat(err) {
			i.record("format_error")
			i.logger.Warn("upload rejected", zap.String("filename", filename), zap.Error(err))
			return &Ingestion{Dataset: &models.Dataset{Filename: filename}}, err
		}
		i.record("error")
		return nil, err
	}
	if coalesced {
		i.logger.Debug("upload coalesced", zap.String("dataset", id[:12]))
	}
	return v.(*Ingestion), nil
}

func (i *Ingestor) ingest(ctx context.Context, id, filename string, data []byte) (*Ingestion, error) {
	ok, err := i.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		ds, records, err := i.store.Load(ctx, id)
		if err == nil {
			i.metrics.CacheHits.Inc()
			i.record("cached")
			return &Ingestion{Dataset: ds, Options: filter.Options(records), Cached: true}, nil
		}
		// evicted between the two calls
		if !errors.Is(err, apperrors.ErrDatasetNotFound) {
			return nil, err
		}
	}

	res, err := i.normalizer.Normalize(data)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		ID:          id,
		Filename:    filename,
		DroppedRows: res.DroppedRows,
		Synthesized: store.JoinColumns(res.Synthesized),
	}
	if err := i.store.Save(ctx, ds, res.Records); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", filename, err)
	}
	i.metrics.DroppedRows.Add(float64(res.DroppedRows))
	i.record("ok")
	return &Ingestion{Dataset: ds, Options: filter.Options(res.Records)}, nil
}

// View loads a dataset and recomputes the filtered records and aggregates for
// sel. An empty match is not an error; check View.Empty.
func (i *Ingestor) View(ctx context.Context, id string, sel models.FilterSelection) (*View, error) {
	ds, records, err := i.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	filtered := filter.Apply(records, sel)
	return &View{
		Dataset:    ds,
		Options:    filter.Options(records),
		Selection:  sel,
		Records:    filtered,
		Aggregates: aggregator.Compute(filtered),
	}, nil
}

// Datasets lists stored datasets, most recently used first.
func (i *Ingestor) Datasets(ctx context.Context) ([]models.Dataset, error) {
	return i.store.List(ctx)
}

// Dataset returns the metadata of one stored dataset.
func (i *Ingestor) Dataset(ctx context.Context, id string) (*models.Dataset, error) {
	return i.store.Get(ctx, id)
}

// Remove deletes a dataset.
func (i *Ingestor) Remove(ctx context.Context, id string) error {
	if err := i.store.Delete(ctx, id); err != nil {
		return err
	}
	i.logger.Info("dataset removed", zap.String("dataset", id))
	return nil
}

func (i *Ingestor) record(result string) {
	i.metrics.Uploads.WithLabelValues(result).Inc()
}
