package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartSpan_EndsWithoutErrorByDefault(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "orchestrator", "expand")
	assert.NotNil(t, ctx)
	end(nil)
}

func TestStartSpan_RecordsError(t *testing.T) {
	_, end := StartSpan(context.Background(), "ingest", "embed")
	assert.NotPanics(t, func() { end(errors.New("boom")) })
}
