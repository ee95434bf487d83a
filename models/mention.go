package models

import "time"

const (
	// Unknown replaces missing categorical values.
	Unknown = "Unknown"
	// All is the select-box value meaning "no constraint".
	All = "All"
	// DateLayout is the canonical calendar date format.
	DateLayout = "2006-01-02"
)

// Mention is one normalised media-mention record.
type Mention struct {
	Date        time.Time `json:"date"`
	DateString  string    `json:"date_string"`
	Engagements int64     `json:"engagements"`
	Platform    string    `json:"platform"`
	Sentiment   string    `json:"sentiment"`
	MediaType   string    `json:"media_type"`
	Location    string    `json:"location"`
}

// Day returns the calendar date of the mention at midnight UTC.
func (m Mention) Day() time.Time {
	return CalendarDay(m.Date)
}

// CalendarDay strips the time of day, keeping the wall-clock date of t.
func CalendarDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// FilterSelection is the set of user-chosen constraints. A zero value selects
// everything.
type FilterSelection struct {
	Platform  string    `json:"platform,omitempty"`
	Sentiment string    `json:"sentiment,omitempty"`
	MediaType string    `json:"media_type,omitempty"`
	Location  string    `json:"location,omitempty"`
	Start     time.Time `json:"start,omitempty"`
	End       time.Time `json:"end,omitempty"`
}

// Active reports whether a categorical constraint value narrows the set.
func Active(value string) bool {
	return value != "" && value != All
}

// IsZero reports whether the selection has no active constraint.
func (s FilterSelection) IsZero() bool {
	return !Active(s.Platform) && !Active(s.Sentiment) && !Active(s.MediaType) &&
		!Active(s.Location) && s.Start.IsZero() && s.End.IsZero()
}

// FilterOptions lists the values each filter control can take.
type FilterOptions struct {
	Platforms  []string  `json:"platforms"`
	Sentiments []string  `json:"sentiments"`
	MediaTypes []string  `json:"media_types"`
	Locations  []string  `json:"locations"`
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
}
