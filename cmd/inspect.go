package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-intel/aggregator"
	"media-intel/config"
	"media-intel/filter"
	"media-intel/logger"
	"media-intel/models"
	"media-intel/normalizer"
	"media-intel/summary"
)

type inspectReport struct {
	File        string               `json:"file"`
	TotalRows   int                  `json:"total_rows"`
	DroppedRows int                  `json:"dropped_rows"`
	Synthesized []string             `json:"synthesized_columns"`
	Filters     filter.Params        `json:"filters"`
	Options     models.FilterOptions `json:"options"`
	Matched     int                  `json:"matched"`
	DateRange   string               `json:"date_range"`
	Aggregates  models.Aggregates    `json:"aggregates"`
	Prompt      string               `json:"prompt,omitempty"`
}

func newInspectCmd() *cobra.Command {
	var (
		params  filter.Params
		prompt  bool
		lang    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.csv>",
		Short: "Normalise a CSV export offline and print its aggregate tables as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			if verbose {
				var err error
				if log, err = logger.New(config.LoggingConfig{Level: "debug", Development: true}); err != nil {
					return err
				}
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			sel, err := params.Selection()
			if err != nil {
				return err
			}

			res, err := normalizer.New(log).Normalize(data)
			if err != nil {
				return err
			}
			filtered := filter.Apply(res.Records, sel)
			agg := aggregator.Compute(filtered)

			report := inspectReport{
				File:        filepath.Base(args[0]),
				TotalRows:   res.TotalRows,
				DroppedRows: res.DroppedRows,
				Synthesized: res.Synthesized,
				Filters:     params,
				Options:     filter.Options(res.Records),
				Matched:     len(filtered),
				DateRange:   agg.DateRangeText(),
				Aggregates:  agg,
			}
			if prompt && !agg.Empty() {
				report.Prompt = summary.BuildPrompt(agg, lang)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Platform, "platform", "", "keep only this platform")
	f.StringVar(&params.Sentiment, "sentiment", "", "keep only this sentiment")
	f.StringVar(&params.MediaType, "media-type", "", "keep only this media type")
	f.StringVar(&params.Location, "location", "", "keep only this location")
	f.StringVar(&params.StartDate, "start-date", "", "first day to include (YYYY-MM-DD)")
	f.StringVar(&params.EndDate, "end-date", "", "last day to include (YYYY-MM-DD)")
	f.BoolVar(&prompt, "prompt", false, "include the summary prompt for the selection")
	f.StringVar(&lang, "lang", summary.LanguageIndonesian, "prompt language: id or en")
	f.BoolVarP(&verbose, "verbose", "v", false, "log normalisation details to stderr")
	return cmd
}
