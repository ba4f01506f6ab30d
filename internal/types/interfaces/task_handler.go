package interfaces

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskHandler decouples an asynq.ServeMux registration from a concrete
// worker type; internal/ingest.Worker implements it for TaskTypeIngest.
type TaskHandler interface {
	Handle(ctx context.Context, t *asynq.Task) error
}
