package analytics

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_RecordAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.duckdb")
	sink, err := NewSink(path)
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	sink.Record(ctx, SearchEvent{
		QueryLength:   12,
		Expanded:      true,
		ResultCount:   3,
		TopScore:      0.82,
		LatencyMillis: 45,
		Success:       true,
	})
	sink.Record(ctx, SearchEvent{
		QueryLength:   5,
		ResultCount:   0,
		Success:       false,
		ErrorMessage:  "no results",
	})

	events, err := sink.All(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 12, events[0].QueryLength)
	assert.True(t, events[0].Success)
	assert.False(t, events[1].Success)
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, time.Minute)
}

func TestSink_ExportParquetWritesNonEmptyOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.duckdb")
	sink, err := NewSink(path)
	require.NoError(t, err)
	defer sink.Close()

	sink.Record(context.Background(), SearchEvent{QueryLength: 8, ResultCount: 1, Success: true})

	var buf bytes.Buffer
	require.NoError(t, sink.ExportParquet(context.Background(), &buf))
	assert.NotZero(t, buf.Len())
}
