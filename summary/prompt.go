package summary

import (
	"fmt"
	"strings"

	"media-intel/models"
)

// Prompt languages.
const (
	LanguageIndonesian = "id"
	LanguageEnglish    = "en"
)

// BuildPrompt renders the campaign-strategy prompt for agg. Unknown languages
// fall back to Indonesian.
func BuildPrompt(agg models.Aggregates, lang string) string {
	if lang == LanguageEnglish {
		return createEnglishPrompt(agg)
	}
	return createIndonesianPrompt(agg)
}

// SupportedLanguage reports whether BuildPrompt has a template for lang.
func SupportedLanguage(lang string) bool {
	return lang == LanguageIndonesian || lang == LanguageEnglish
}

func createIndonesianPrompt(agg models.Aggregates) string {
	var b strings.Builder
	b.WriteString("Berdasarkan data intelijen media berikut, berikan ringkasan strategi kampanye (ringkasan tindakan utama) yang ringkas dalam bahasa Indonesia.\n")
	b.WriteString("Fokus pada wawasan yang dapat ditindaklanjuti.\n\n")
	b.WriteString("Poin data:\n")
	fmt.Fprintf(&b, "- Rentang Tanggal Data: %s\n", agg.DateRangeText())
	fmt.Fprintf(&b, "- Total Keterlibatan: %d\n", agg.TotalEngagements)
	fmt.Fprintf(&b, "- Pecahan Sentimen: %s\n", agg.SentimentBreakdown.PromptJSON())
	fmt.Fprintf(&b, "- Platform Teratas berdasarkan Keterlibatan: %s\n", agg.TopPlatforms.PromptJSON())
	fmt.Fprintf(&b, "- Jenis Media Teratas: %s\n", agg.TopMediaTypes.PromptJSON())
	fmt.Fprintf(&b, "- Lokasi Teratas: %s\n\n", agg.PromptLocations.PromptJSON())
	b.WriteString("Sajikan ringkasan ini dalam format naratif yang mudah dibaca, menyoroti rekomendasi atau poin tindakan utama.")
	return b.String()
}

func createEnglishPrompt(agg models.Aggregates) string {
	var b strings.Builder
	b.WriteString("Based on the following media intelligence data, write a concise campaign strategy summary (key action points) in English.\n")
	b.WriteString("Focus on actionable insights.\n\n")
	b.WriteString("Data points:\n")
	fmt.Fprintf(&b, "- Data Date Range: %s\n", agg.DateRangeText())
	fmt.Fprintf(&b, "- Total Engagements: %d\n", agg.TotalEngagements)
	fmt.Fprintf(&b, "- Sentiment Breakdown: %s\n", agg.SentimentBreakdown.PromptJSON())
	fmt.Fprintf(&b, "- Top Platforms by Engagement: %s\n", agg.TopPlatforms.PromptJSON())
	fmt.Fprintf(&b, "- Top Media Types: %s\n", agg.TopMediaTypes.PromptJSON())
	fmt.Fprintf(&b, "- Top Locations: %s\n\n", agg.PromptLocations.PromptJSON())
	b.WriteString("Present the summary as an easy-to-read narrative that highlights the main recommendations or action points.")
	return b.String()
}
