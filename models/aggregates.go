package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// NoData replaces the date range in formatted text when nothing matched.
const NoData = "no data"

// Group is one row of an aggregate table.
type Group struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Groups is an ordered aggregate table.
type Groups []Group

// Top returns at most n leading groups. Appending to the result never
// writes into g.
func (g Groups) Top(n int) Groups {
	if len(g) <= n {
		return g[:len(g):len(g)]
	}
	return g[:n:n]
}

// Get returns the value stored for key.
func (g Groups) Get(key string) (int64, bool) {
	for _, row := range g {
		if row.Key == key {
			return row.Value, true
		}
	}
	return 0, false
}

// PromptJSON renders the table as a JSON object that keeps row order and leaves
// non-ASCII and HTML characters unescaped.
func (g Groups) PromptJSON() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := []byte{'{'}
	for i, row := range g {
		if i > 0 {
			out = append(out, ", "...)
		}
		buf.Reset()
		_ = enc.Encode(row.Key)
		out = append(out, bytes.TrimRight(buf.Bytes(), "\n")...)
		out = append(out, ": "...)
		out = strconv.AppendInt(out, row.Value, 10)
	}
	out = append(out, '}')
	return string(out)
}

// DailyPoint is one bucket of the engagement trend.
type DailyPoint struct {
	Date        string `json:"date"`
	Engagements int64  `json:"engagements"`
}

// Aggregates holds every table derived from a filtered record set.
type Aggregates struct {
	RecordCount         int          `json:"record_count"`
	TotalEngagements    int64        `json:"total_engagements"`
	SentimentBreakdown  Groups       `json:"sentiment_breakdown"`
	PlatformEngagements Groups       `json:"platform_engagements"`
	TopPlatforms        Groups       `json:"top_platforms"`
	MediaTypeMix        Groups       `json:"media_type_mix"`
	TopMediaTypes       Groups       `json:"top_media_types"`
	TopLocations        Groups       `json:"top_locations"`
	PromptLocations     Groups       `json:"prompt_locations"`
	DailyEngagements    []DailyPoint `json:"daily_engagements"`
	MinDate             *time.Time   `json:"min_date,omitempty"`
	MaxDate             *time.Time   `json:"max_date,omitempty"`
}

// Empty reports whether the aggregates were computed over no records.
func (a Aggregates) Empty() bool {
	return a.RecordCount == 0
}

// DateRangeText formats the filtered range of calendar days as
// "YYYY-MM-DD - YYYY-MM-DD".
func (a Aggregates) DateRangeText() string {
	if a.MinDate == nil || a.MaxDate == nil {
		return NoData
	}
	return a.MinDate.Format(DateLayout) + " - " + a.MaxDate.Format(DateLayout)
}
