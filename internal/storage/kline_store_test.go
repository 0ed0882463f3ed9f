package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func Test_toKline(t *testing.T) {
	doc := rawKlineDoc{
		OpenTime:  1669852800000,
		CloseTime: 1669856399999,
		Open:      "17165.9",
		High:      "17198.1",
		Low:       "16888.3",
		Close:     "16977.4",
	}

	kline, err := doc.toKline()
	require.NoError(t, err)

	assert.Equal(t, int64(1669852800000), kline.OpenTime)
	assert.Equal(t, int64(1669856399999), kline.CloseTime)
	assert.Equal(t, 17165.9, kline.Open)
	assert.Equal(t, 17198.1, kline.High)
	assert.Equal(t, 16888.3, kline.Low)
	assert.Equal(t, 16977.4, kline.Close)
}

func Test_toKline_NonNumericField(t *testing.T) {
	tests := []struct {
		name  string
		doc   rawKlineDoc
		field string
	}{
		{
			name:  "Bad open",
			doc:   rawKlineDoc{CloseTime: 1, Open: "x", High: "1", Low: "1", Close: "1"},
			field: "open",
		},
		{
			name:  "Empty close",
			doc:   rawKlineDoc{CloseTime: 1, Open: "1", High: "1", Low: "1", Close: ""},
			field: "close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.toKline()
			require.Error(t, err, "A malformed stored document must fail the read, not default to zero")
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

// Stored documents round-trip through the BSON tags used by the collector.
func Test_rawKlineDoc_BSONRoundTrip(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "open_time", Value: int64(1669852800000)},
		{Key: "close_time", Value: int64(1669856399999)},
		{Key: "open", Value: "17165.9"},
		{Key: "high", Value: "17198.1"},
		{Key: "low", Value: "16888.3"},
		{Key: "close", Value: "16977.4"},
	})
	require.NoError(t, err)

	var doc rawKlineDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))

	kline, err := doc.toKline()
	require.NoError(t, err)
	assert.Equal(t, 17165.9, kline.Open)
	assert.Equal(t, int64(1669856399999), kline.CloseTime)
}
