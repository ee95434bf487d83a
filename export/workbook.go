// Package export writes a filtered dataset and its aggregate tables to an XLSX
// workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"media-intel/models"
)

// Sheet names, in workbook order.
const (
	SheetRecords    = "Records"
	SheetSentiment  = "Sentiment"
	SheetPlatforms  = "Platforms"
	SheetMediaTypes = "Media Types"
	SheetLocations  = "Locations"
	SheetTrend      = "Daily Trend"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook renders records and agg as an XLSX file.
func Workbook(records []models.Mention, agg models.Aggregates) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRecords); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, []interface{}{"Date", "Platform", "Sentiment", "Media Type", "Location", "Engagements"})
	for _, r := range records {
		rows = append(rows, []interface{}{r.DateString, r.Platform, r.Sentiment, r.MediaType, r.Location, r.Engagements})
	}
	if err := writeRows(f, SheetRecords, rows); err != nil {
		return nil, err
	}

	tables := []struct {
		sheet  string
		header []interface{}
		groups models.Groups
	}{
		{SheetSentiment, []interface{}{"Sentiment", "Mentions"}, agg.SentimentBreakdown},
		{SheetPlatforms, []interface{}{"Platform", "Engagements"}, agg.PlatformEngagements},
		{SheetMediaTypes, []interface{}{"Media Type", "Mentions"}, agg.MediaTypeMix},
		{SheetLocations, []interface{}{"Location", "Mentions"}, agg.TopLocations},
	}
	for _, tbl := range tables {
		if _, err := f.NewSheet(tbl.sheet); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", tbl.sheet, err)
		}
		rows := [][]interface{}{tbl.header}
		for _, g := range tbl.groups {
			rows = append(rows, []interface{}{g.Key, g.Value})
		}
		if err := writeRows(f, tbl.sheet, rows); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(SheetTrend); err != nil {
		return nil, fmt.Errorf("add sheet %s: %w", SheetTrend, err)
	}
	trend := [][]interface{}{{"Date", "Engagements"}}
	for _, p := range agg.DailyEngagements {
		trend = append(trend, []interface{}{p.Date, p.Engagements})
	}
	if err := writeRows(f, SheetTrend, trend); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
