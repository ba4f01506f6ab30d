// Package common holds small helpers shared across otherwise-unrelated
// internal packages, kept deliberately tiny to avoid becoming a dumping
// ground.
package common

import (
	"context"

	"github.com/driftmind/driftmind/internal/logger"
)

// PipelineInfo logs a structured info-level entry for one orchestrator or
// ingest pipeline stage.
func PipelineInfo(ctx context.Context, stage, action string, fields map[string]interface{}) {
	logger.GetLogger(ctx).WithFields(toLogrusFields(fields)).WithField("stage", stage).Info(action)
}

// PipelineWarn logs a structured warn-level entry for one pipeline stage.
func PipelineWarn(ctx context.Context, stage, action string, fields map[string]interface{}) {
	logger.GetLogger(ctx).WithFields(toLogrusFields(fields)).WithField("stage", stage).Warn(action)
}

// PipelineError logs a structured error-level entry for one pipeline stage.
func PipelineError(ctx context.Context, stage, action string, fields map[string]interface{}) {
	logger.GetLogger(ctx).WithFields(toLogrusFields(fields)).WithField("stage", stage).Error(action)
}

func toLogrusFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return map[string]interface{}{}
	}
	return fields
}
