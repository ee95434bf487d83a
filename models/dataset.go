package models

import "time"

// Dataset is one uploaded file held in the in-memory store. ID is the hex
// SHA-256 of the uploaded bytes.
type Dataset struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Filename    string     `json:"filename"`
	RowCount    int        `json:"row_count"`
	DroppedRows int        `json:"dropped_rows"`
	Synthesized string     `json:"synthesized_columns"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  time.Time  `json:"last_used_at" gorm:"index"`
	Summary     string     `json:"summary"`
	SummaryAt   *time.Time `json:"summary_at,omitempty"`
}

// MentionRow stores one Mention of a Dataset. Seq keeps the normalised order.
type MentionRow struct {
	ID          uint   `gorm:"primaryKey"`
	DatasetID   string `gorm:"index:idx_dataset_seq,priority:1"`
	Seq         int    `gorm:"index:idx_dataset_seq,priority:2"`
	DateText    string
	DateString  string
	Engagements int64
	Platform    string
	Sentiment   string
	MediaType   string
	Location    string
}
