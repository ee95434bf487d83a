// Package filter narrows a normalised record set to a FilterSelection.
package filter

import (
	"fmt"
	"strings"
	"time"

	"media-intel/apperrors"
	"media-intel/models"
)

// Apply returns the records satisfying every active constraint of sel, in
// their original order. Date bounds are inclusive and compare calendar days.
// The input slice is never modified.
func Apply(records []models.Mention, sel models.FilterSelection) []models.Mention {
	out := make([]models.Mention, 0, len(records))
	start, end := day(sel.Start), day(sel.End)

	for _, r := range records {
		if models.Active(sel.Platform) && r.Platform != sel.Platform {
			continue
		}
		if models.Active(sel.Sentiment) && r.Sentiment != sel.Sentiment {
			continue
		}
		if models.Active(sel.MediaType) && r.MediaType != sel.MediaType {
			continue
		}
		if models.Active(sel.Location) && r.Location != sel.Location {
			continue
		}

		d := r.Day()
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options collects the distinct values of every filter dimension in
// first-encountered order, plus the data span.
func Options(records []models.Mention) models.FilterOptions {
	opts := models.FilterOptions{
		Platforms:  []string{},
		Sentiments: []string{},
		MediaTypes: []string{},
		Locations:  []string{},
	}
	if len(records) == 0 {
		return opts
	}

	platforms, sentiments := distinct{}, distinct{}
	mediaTypes, locations := distinct{}, distinct{}

	opts.MinDate, opts.MaxDate = records[0].Day(), records[0].Day()
	for _, r := range records {
		platforms.add(&opts.Platforms, r.Platform)
		sentiments.add(&opts.Sentiments, r.Sentiment)
		mediaTypes.add(&opts.MediaTypes, r.MediaType)
		locations.add(&opts.Locations, r.Location)

		d := r.Day()
		if d.Before(opts.MinDate) {
			opts.MinDate = d
		}
		if d.After(opts.MaxDate) {
			opts.MaxDate = d
		}
	}
	return opts
}

// distinct appends each value to a list the first time it is seen.
type distinct map[string]bool

func (d distinct) add(list *[]string, v string) {
	if !d[v] {
		d[v] = true
		*list = append(*list, v)
	}
}

// Params is the raw, string-typed form of a selection as it arrives from a
// query string, form or CLI flags.
type Params struct {
	Platform  string `form:"platform" json:"platform"`
	Sentiment string `form:"sentiment" json:"sentiment"`
	MediaType string `form:"media_type" json:"media_type"`
	Location  string `form:"location" json:"location"`
	StartDate string `form:"start_date" json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// Selection converts p into a FilterSelection. A start after the end is an
// apperrors.ErrInvalidSelection.
func (p Params) Selection() (models.FilterSelection, error) {
	sel := models.FilterSelection{
		Platform:  strings.TrimSpace(p.Platform),
		Sentiment: strings.TrimSpace(p.Sentiment),
		MediaType: strings.TrimSpace(p.MediaType),
		Location:  strings.TrimSpace(p.Location),
	}

	var err error
	if sel.Start, err = parseBound("start_date", p.StartDate); err != nil {
		return models.FilterSelection{}, err
	}
	if sel.End, err = parseBound("end_date", p.EndDate); err != nil {
		return models.FilterSelection{}, err
	}
	if !sel.Start.IsZero() && !sel.End.IsZero() && sel.Start.After(sel.End) {
		return models.FilterSelection{}, fmt.Errorf("%w: start_date %s is after end_date %s",
			apperrors.ErrInvalidSelection, p.StartDate, p.EndDate)
	}
	return sel, nil
}

// ParamsFrom renders sel back into its string form.
func ParamsFrom(sel models.FilterSelection) Params {
	p := Params{
		Platform:  sel.Platform,
		Sentiment: sel.Sentiment,
		MediaType: sel.MediaType,
		Location:  sel.Location,
	}
	if !sel.Start.IsZero() {
		p.StartDate = sel.Start.Format(models.DateLayout)
	}
	if !sel.End.IsZero() {
		p.EndDate = sel.End.Format(models.DateLayout)
	}
	return p
}

func parseBound(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q",
			apperrors.ErrInvalidSelection, field, raw)
	}
	return t, nil
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return models.CalendarDay(t)
}
