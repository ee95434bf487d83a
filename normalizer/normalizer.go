// Package normalizer turns uploaded CSV bytes into typed, date-sorted mention
// records.
package normalizer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"media-intel/apperrors"
	"media-intel/logger"
	"media-intel/models"
)

// Column names expected in the header row.
const (
	ColumnDate        = "Date"
	ColumnEngagements = "Engagements"
	ColumnPlatform    = "Platform"
	ColumnSentiment   = "Sentiment"
	ColumnMediaType   = "Media Type"
	ColumnLocation    = "Location"
)

// CategoricalColumns are filled with models.Unknown when missing.
var CategoricalColumns = []string{ColumnPlatform, ColumnSentiment, ColumnMediaType, ColumnLocation}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"20060102",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is the output of one normalisation pass.
type Result struct {
	Records []models.Mention
	// TotalRows counts data rows read, before date exclusion.
	TotalRows int
	// DroppedRows counts rows excluded for a missing or unparseable date.
	DroppedRows int
	// Synthesized lists categorical columns absent from the header.
	Synthesized []string
}

// Normalizer cleans raw CSV uploads.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a Normalizer with the given logger.
func New(l *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger.Component(l, "normalizer")}
}

// Normalize parses data and applies the missing-data and coercion policy. It is
// a pure function of data. Container-level failures return a
// *apperrors.DataFormatError and no records.
func (n *Normalizer) Normalize(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.NewDataFormatError("file is empty", nil)
	}
	if !utf8.Valid(data) {
		return nil, apperrors.NewDataFormatError("file is not valid UTF-8 text", nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewDataFormatError("missing header row", nil)
		}
		return nil, apperrors.NewDataFormatError("cannot read header row", err)
	}

	cols := indexColumns(header)
	dateIdx, ok := cols[strings.ToLower(ColumnDate)]
	if !ok {
		return nil, apperrors.NewDataFormatError("missing required column "+ColumnDate, nil)
	}
	engIdx, ok := cols[strings.ToLower(ColumnEngagements)]
	if !ok {
		return nil, apperrors.NewDataFormatError("missing required column "+ColumnEngagements, nil)
	}

	catIdx := make([]int, len(CategoricalColumns))
	var synthesized []string
	for i, name := range CategoricalColumns {
		idx, ok := cols[strings.ToLower(name)]
		if !ok {
			idx = -1
			synthesized = append(synthesized, name)
		}
		catIdx[i] = idx
	}

	result := &Result{Records: make([]models.Mention, 0), Synthesized: synthesized}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewDataFormatError("cannot parse CSV", err)
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, apperrors.NewDataFormatError(
				"line "+strconv.Itoa(line)+" has more fields than the header", nil)
		}
		result.TotalRows++

		date, ok := ParseDate(cell(row, dateIdx))
		if !ok {
			result.DroppedRows++
			continue
		}

		result.Records = append(result.Records, models.Mention{
			Date:        date,
			DateString:  date.Format(models.DateLayout),
			Engagements: ParseEngagements(cell(row, engIdx)),
			Platform:    categorical(row, catIdx[0]),
			Sentiment:   categorical(row, catIdx[1]),
			MediaType:   categorical(row, catIdx[2]),
			Location:    categorical(row, catIdx[3]),
		})
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Date.Before(result.Records[j].Date)
	})

	n.logger.Info("normalized upload",
		zap.Int("rows", result.TotalRows),
		zap.Int("kept", len(result.Records)),
		zap.Int("dropped", result.DroppedRows),
		zap.Strings("synthesized", synthesized))
	return result, nil
}

// ParseDate parses a date cell with the supported layouts.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseEngagements coerces an engagement cell to a non-negative integer.
// Empty and non-numeric cells become 0; fractions are truncated.
func ParseEngagements(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func categorical(row []string, idx int) string {
	v := strings.TrimSpace(cell(row, idx))
	if v == "" {
		return models.Unknown
	}
	return v
}
