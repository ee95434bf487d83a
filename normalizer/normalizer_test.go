package normalizer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-intel/apperrors"
	"media-intel/models"
)

func newTestNormalizer() *Normalizer { return New(zap.NewNop()) }

const workedExample = `Date,Engagements,Platform,Sentiment
2024-01-01,10,X,Positive
bad,5,Y,
2024-01-02,,X,Negative
`

func TestNormalizeWorkedExample(t *testing.T) {
	res, err := newTestNormalizer().Normalize([]byte(workedExample))
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 1, res.DroppedRows)
	assert.Equal(t, []string{ColumnMediaType, ColumnLocation}, res.Synthesized)

	first, second := res.Records[0], res.Records[1]
	assert.Equal(t, "2024-01-01", first.DateString)
	assert.Equal(t, int64(10), first.Engagements)
	assert.Equal(t, "2024-01-02", second.DateString)
	assert.Equal(t, int64(0), second.Engagements)
	for _, r := range res.Records {
		assert.Equal(t, models.Unknown, r.MediaType)
		assert.Equal(t, models.Unknown, r.Location)
	}
}

func TestNormalizeDropsMalformedDate(t *testing.T) {
	csv := `Date,Engagements,Platform,Sentiment,Media Type,Location
2024-03-01,1,X,Positive,Online,Jakarta
2024-03-02,2,X,Positive,Online,Jakarta
not-a-date,3,X,Positive,Online,Jakarta
2024-03-03,4,X,Positive,Online,Jakarta
2024-03-04,5,X,Positive,Online,Jakarta
`
	res, err := newTestNormalizer().Normalize([]byte(csv))
	require.NoError(t, err)
	assert.Len(t, res.Records, 4)
	assert.Empty(t, res.Synthesized)
}

func TestNormalizeFillsUnknownAndCoerces(t *testing.T) {
	csv := `Date,Engagements,Platform,Sentiment,Media Type,Location
2024-01-05,12.9,,Neutral,  ,Bandung
2024-01-06,-4,TikTok,,Video,
2024-01-07,lots,  Instagram  ,Positive,Image,Surabaya
2024-01-08,NaN,X,Positive,Text,Medan
`
	res, err := newTestNormalizer().Normalize([]byte(csv))
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	assert.Equal(t, int64(12), res.Records[0].Engagements)
	assert.Equal(t, models.Unknown, res.Records[0].Platform)
	assert.Equal(t, models.Unknown, res.Records[0].MediaType)
	assert.Equal(t, int64(0), res.Records[1].Engagements)
	assert.Equal(t, models.Unknown, res.Records[1].Sentiment)
	assert.Equal(t, models.Unknown, res.Records[1].Location)
	assert.Equal(t, int64(0), res.Records[2].Engagements)
	assert.Equal(t, "Instagram", res.Records[2].Platform)
	assert.Equal(t, int64(0), res.Records[3].Engagements)

	for _, r := range res.Records {
		assert.NotEmpty(t, r.Platform)
		assert.NotEmpty(t, r.Sentiment)
		assert.NotEmpty(t, r.MediaType)
		assert.NotEmpty(t, r.Location)
		assert.GreaterOrEqual(t, r.Engagements, int64(0))
	}
}

func TestNormalizeSortsStableByDate(t *testing.T) {
	csv := `Date,Engagements,Platform
2024-02-03,1,A
2024-02-01,2,B
2024-02-03,3,C
2024-02-01 18:30:00,4,D
2024-02-01,5,E
`
	res, err := newTestNormalizer().Normalize([]byte(csv))
	require.NoError(t, err)

	var got []string
	for _, r := range res.Records {
		got = append(got, r.Platform)
	}
	assert.Equal(t, []string{"B", "E", "D", "A", "C"}, got)
	assert.Equal(t, "2024-02-01", res.Records[2].DateString, "time of day collapses into the day bucket")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := newTestNormalizer()
	first, err := n.Normalize([]byte(workedExample))
	require.NoError(t, err)
	second, err := n.Normalize([]byte(workedExample))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("normalizing identical bytes differs (-first +second):\n%s", diff)
	}
}

func TestNormalizeHeaderVariants(t *testing.T) {
	csv := "\xEF\xBB\xBF date , ENGAGEMENTS,media type\n2024-05-01,7,Podcast\n"
	res, err := newTestNormalizer().Normalize([]byte(csv))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Podcast", res.Records[0].MediaType)
	assert.Equal(t, int64(7), res.Records[0].Engagements)
}

func TestNormalizeShortRowsTreatedAsMissing(t *testing.T) {
	csv := "Date,Engagements,Platform,Sentiment\n2024-05-01,7\n"
	res, err := newTestNormalizer().Normalize([]byte(csv))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, models.Unknown, res.Records[0].Platform)
	assert.Equal(t, models.Unknown, res.Records[0].Sentiment)
}

func TestNormalizeHeaderOnly(t *testing.T) {
	res, err := newTestNormalizer().Normalize([]byte("Date,Engagements\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0, res.TotalRows)
}

func TestNormalizeFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte("")},
		{"whitespace", []byte("  \n\n")},
		{"invalid utf8", []byte("Date,Engagements\n2024-01-01,\xff\xfe\n")},
		{"missing date column", []byte("Day,Engagements\n2024-01-01,1\n")},
		{"missing engagements column", []byte("Date,Likes\n2024-01-01,1\n")},
		{"bare quote", []byte("Date,Engagements\n2024-01-01,1\"2\n")},
		{"too many fields", []byte("Date,Engagements\n2024-01-01,1,extra\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestNormalizer().Normalize(tt.data)
			assert.Nil(t, res)
			assert.True(t, apperrors.IsDataFormat(err), "want DataFormatError, got %v", err)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024-01-31", "2024-01-31", true},
		{"2024-01-31T23:10:00Z", "2024-01-31", true},
		{"2024-01-31 08:00:00", "2024-01-31", true},
		{"2024/01/31", "2024-01-31", true},
		{"01/31/2024", "2024-01-31", true},
		{"31 Jan 2024", "2024-01-31", true},
		{"January 31, 2024", "2024-01-31", true},
		{" 2024-01-31 ", "2024-01-31", true},
		{"", "", false},
		{"2024-02-30", "", false},
		{"yesterday", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseDate(%q)", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got.Format(models.DateLayout), "ParseDate(%q)", tt.raw)
		}
	}
}

func TestParseEngagements(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"10", 10},
		{" 42 ", 42},
		{"3.99", 3},
		{"1e3", 1000},
		{"", 0},
		{"n/a", 0},
		{"-7", 0},
		{"-2.5", 0},
		{"Inf", 0},
		{"1,200", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEngagements(tt.raw), "ParseEngagements(%q)", tt.raw)
	}
}

func TestRecordDatesKeepWallClockDay(t *testing.T) {
	res, err := newTestNormalizer().Normalize([]byte("Date,Engagements\n2024-06-30T23:30:00+07:00,1\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "2024-06-30", res.Records[0].DateString)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), res.Records[0].Day())
}
