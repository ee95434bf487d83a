// Package aggregator computes the grouped counts and sums behind the charts and
// the summary prompt.
package aggregator

import (
	"math"
	"sort"

	"media-intel/models"
)

// Table sizes used by the dashboard and the prompt.
const (
	PromptTopN   = 3
	ChartTopLocs = 5
)

// Compute derives every aggregate table from records. Empty input yields zero
// totals, empty tables and no date range.
func Compute(records []models.Mention) models.Aggregates {
	sentiment := newCounter()
	platform := newCounter()
	media := newCounter()
	location := newCounter()
	daily := newCounter()

	agg := models.Aggregates{RecordCount: len(records)}
	for _, r := range records {
		agg.TotalEngagements = saturatingAdd(agg.TotalEngagements, r.Engagements)
		sentiment.add(r.Sentiment, 1)
		platform.add(r.Platform, r.Engagements)
		media.add(r.MediaType, 1)
		location.add(r.Location, 1)
		daily.add(r.DateString, r.Engagements)

		d := r.Day()
		if agg.MinDate == nil || d.Before(*agg.MinDate) {
			agg.MinDate = &d
		}
		if agg.MaxDate == nil || d.After(*agg.MaxDate) {
			agg.MaxDate = &d
		}
	}

	agg.SentimentBreakdown = sentiment.ranked()
	agg.PlatformEngagements = platform.ranked()
	agg.TopPlatforms = agg.PlatformEngagements.Top(PromptTopN)
	agg.MediaTypeMix = media.ranked()
	agg.TopMediaTypes = agg.MediaTypeMix.Top(PromptTopN)
	locs := location.ranked()
	agg.TopLocations = locs.Top(ChartTopLocs)
	agg.PromptLocations = locs.Top(PromptTopN)
	agg.DailyEngagements = daily.trend()
	return agg
}

// counter accumulates values per key and remembers first-encounter order.
type counter struct {
	order  []string
	values map[string]int64
}

func newCounter() *counter {
	return &counter{values: make(map[string]int64)}
}

func (c *counter) add(key string, v int64) {
	if _, ok := c.values[key]; !ok {
		c.order = append(c.order, key)
	}
	c.values[key] = saturatingAdd(c.values[key], v)
}

// saturatingAdd sums two non-negative values, stopping at math.MaxInt64.
func saturatingAdd(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// ranked orders groups by value, descending. Ties keep first-encounter order.
func (c *counter) ranked() models.Groups {
	out := make(models.Groups, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, models.Group{Key: k, Value: c.values[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// trend lists every bucket once, ascending by date string.
func (c *counter) trend() []models.DailyPoint {
	out := make([]models.DailyPoint, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, models.DailyPoint{Date: k, Engagements: c.values[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
