// Package summary generates campaign-strategy summaries of a filtered dataset
// with a language model. At most one generation runs at a time.
package summary

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"media-intel/aggregator"
	"media-intel/apperrors"
	"media-intel/filter"
	"media-intel/llm"
	"media-intel/logger"
	"media-intel/metrics"
	"media-intel/models"
	"media-intel/store"
)

// Result is a generated summary.
type Result struct {
	DatasetID   string                 `json:"dataset_id"`
	Language    string                 `json:"language"`
	Selection   models.FilterSelection `json:"selection"`
	Summary     string                 `json:"summary"`
	Prompt      string                 `json:"prompt"`
	RecordCount int                    `json:"record_count"`
	DateRange   string                 `json:"date_range"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// Service runs summary generations.
type Service struct {
	store    *store.DatasetStore
	client   llm.Client
	metrics  *metrics.Metrics
	logger   *zap.Logger
	timeout  time.Duration
	language string
	busy     atomic.Bool
}

// NewService creates a Service. timeout bounds a call whose context has no
// deadline; language is used when a request names none.
func NewService(s *store.DatasetStore, c llm.Client, m *metrics.Metrics, l *zap.Logger, timeout time.Duration, language string) *Service {
	if !SupportedLanguage(language) {
		language = LanguageIndonesian
	}
	return &Service{
		store:    s,
		client:   c,
		metrics:  m,
		logger:   logger.Component(l, "summary"),
		timeout:  timeout,
		language: language,
	}
}

// InProgress reports whether a generation is running.
func (s *Service) InProgress() bool {
	return s.busy.Load()
}

// Generate summarises the records of datasetID matching sel. It returns
// apperrors.ErrNoMatchingData without calling the model when nothing matches,
// and apperrors.ErrSummaryInProgress while another generation runs. The model
// is called once; failures are *apperrors.LLMCallError.
func (s *Service) Generate(ctx context.Context, datasetID string, sel models.FilterSelection, lang string) (*Result, error) {
	if lang == "" {
		lang = s.language
	}
	if !SupportedLanguage(lang) {
		s.observe("error")
		return nil, fmt.Errorf("%w: unsupported language %q", apperrors.ErrInvalidSelection, lang)
	}

	_, records, err := s.store.Load(ctx, datasetID)
	if err != nil {
		s.observe("error")
		return nil, err
	}
	filtered := filter.Apply(records, sel)
	if len(filtered) == 0 {
		s.observe("no_data")
		return nil, apperrors.ErrNoMatchingData
	}
	agg := aggregator.Compute(filtered)

	if !s.busy.CompareAndSwap(false, true) {
		s.observe("busy")
		return nil, apperrors.ErrSummaryInProgress
	}
	defer s.busy.Store(false)

	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(agg, lang)
	start := time.Now()
	text, err := s.client.Generate(ctx, prompt)
	s.metrics.SummaryLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if !apperrors.IsLLMCall(err) {
			err = &apperrors.LLMCallError{Op: "generate summary", Err: err}
		}
		s.observe("llm_error")
		s.logger.Warn("summary generation failed", zap.String("dataset", datasetID), zap.Error(err))
		return nil, err
	}

	// the dataset may have been evicted while the model was running
	if err := s.store.SetSummary(context.WithoutCancel(ctx), datasetID, text); err != nil {
		s.logger.Warn("summary not stored", zap.String("dataset", datasetID), zap.Error(err))
	}

	s.observe("ok")
	s.logger.Info("summary generated",
		zap.String("dataset", datasetID),
		zap.String("language", lang),
		zap.Int("records", agg.RecordCount),
		zap.Duration("took", time.Since(start)))
	return &Result{
		DatasetID:   datasetID,
		Language:    lang,
		Selection:   sel,
		Summary:     text,
		Prompt:      prompt,
		RecordCount: agg.RecordCount,
		DateRange:   agg.DateRangeText(),
		GeneratedAt: start.UTC(),
	}, nil
}

func (s *Service) observe(result string) {
	s.metrics.SummaryRequests.WithLabelValues(result).Inc()
}
