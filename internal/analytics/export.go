package analytics

import (
	"context"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// ExportParquet streams every recorded SearchEvent to w as a Parquet file,
// backing GET /system/analytics/export.
func (s *Sink) ExportParquet(ctx context.Context, w io.Writer) error {
	events, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("load events for export: %w", err)
	}

	if err := parquet.Write(w, events); err != nil {
		return fmt.Errorf("write parquet export: %w", err)
	}
	return nil
}
