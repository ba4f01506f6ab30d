package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/driftmind/driftmind/internal/common"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// TaskTypeIngest is the asynq task type name for a queued ingest (SPEC_FULL
// §4.2 supplement: uploads at or above config.Ingest.AsyncThresholdMB are
// queued instead of processed inline).
const TaskTypeIngest = "driftmind:ingest"

const taskStatusKeyPrefix = "driftmind:ingest:task:"
const taskStatusTTL = 24 * time.Hour

// taskPayload is the asynq task payload: the whole request, body included.
// encoding/json encodes a []byte field as base64 automatically.
type taskPayload struct {
	FileName          string `json:"file_name"`
	ContentType       string `json:"content_type"`
	Size              int64  `json:"size"`
	Body              []byte `json:"body"`
	DesiredDocumentID string `json:"desired_document_id"`
	UserMetadata      string `json:"user_metadata"`
	ChunkSize         int    `json:"chunk_size"`
	ChunkOverlap      int    `json:"chunk_overlap"`
}

// AsyncQueue enqueues oversized ingest requests and reports their status,
// grounded on the teacher's go.mod hibiken/asynq + redis/go-redis/v9
// dependencies (unused by the retrieved teacher slice).
type AsyncQueue struct {
	client *asynq.Client
	redis  *redis.Client
}

// NewAsyncQueue builds an AsyncQueue against a shared redis connection
// config (asynq owns its own pool; status tracking shares the app's redis
// client).
func NewAsyncQueue(redisOpt asynq.RedisClientOpt, statusClient *redis.Client) *AsyncQueue {
	return &AsyncQueue{
		client: asynq.NewClient(redisOpt),
		redis:  statusClient,
	}
}

// Enqueue buffers the request body and schedules a driftmind:ingest task,
// returning immediately with a pollable task ID.
func (q *AsyncQueue) Enqueue(ctx context.Context, req interfaces.IngestRequest) (string, error) {
	body, err := readAll(req.Body)
	if err != nil {
		return "", fmt.Errorf("buffer request body: %w", err)
	}

	payload, err := json.Marshal(taskPayload{
		FileName:          req.FileName,
		ContentType:       req.ContentType,
		Size:              req.Size,
		Body:              body,
		DesiredDocumentID: req.DesiredDocumentID,
		UserMetadata:      req.UserMetadata,
		ChunkSize:         req.ChunkSize,
		ChunkOverlap:      req.ChunkOverlap,
	})
	if err != nil {
		return "", fmt.Errorf("marshal task payload: %w", err)
	}

	taskID := uuid.NewString()
	task := asynq.NewTask(TaskTypeIngest, payload, asynq.TaskID(taskID), asynq.MaxRetry(1))
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return "", fmt.Errorf("enqueue ingest task: %w", err)
	}

	if err := q.setStatus(ctx, types.IngestTaskStatus{
		TaskID:    taskID,
		State:     "pending",
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		common.PipelineWarn(ctx, stage, "write initial task status failed", map[string]interface{}{"task_id": taskID, "error": err.Error()})
	}

	return taskID, nil
}

// Status returns the last recorded state of a queued task.
func (q *AsyncQueue) Status(ctx context.Context, taskID string) (*types.IngestTaskStatus, error) {
	raw, err := q.redis.Get(ctx, taskStatusKeyPrefix+taskID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task status: %w", err)
	}

	var status types.IngestTaskStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("decode task status: %w", err)
	}
	return &status, nil
}

func (q *AsyncQueue) setStatus(ctx context.Context, status types.IngestTaskStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return q.redis.Set(ctx, taskStatusKeyPrefix+status.TaskID, raw, taskStatusTTL).Err()
}

// Worker processes queued driftmind:ingest tasks by running them through a
// Pipeline, reporting progress via the same redis-backed status keys
// Enqueue seeds.
type Worker struct {
	pipeline *Pipeline
	status   *AsyncQueue
}

var _ interfaces.TaskHandler = (*Worker)(nil)

// NewWorker builds a Worker bound to a Pipeline and the AsyncQueue whose
// status keys it updates.
func NewWorker(pipeline *Pipeline, status *AsyncQueue) *Worker {
	return &Worker{pipeline: pipeline, status: status}
}

// Register wires the worker onto an asynq.ServeMux under TaskTypeIngest.
// Worker satisfies interfaces.TaskHandler rather than being registered as a
// bare func, so any future task type can depend on that interface instead
// of a concrete *Worker.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.Handle(TaskTypeIngest, w)
}

// Handle implements interfaces.TaskHandler.
func (w *Worker) Handle(ctx context.Context, task *asynq.Task) error {
	var payload taskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode ingest task payload: %w", err)
	}
	taskID, _ := asynq.GetTaskID(ctx)

	_ = w.status.setStatus(ctx, types.IngestTaskStatus{
		TaskID:    taskID,
		State:     "processing",
		UpdatedAt: time.Now().UTC(),
	})

	result, err := w.pipeline.Ingest(ctx, interfaces.IngestRequest{
		FileName:          payload.FileName,
		ContentType:       payload.ContentType,
		Size:              payload.Size,
		Body:              bytes.NewReader(payload.Body),
		DesiredDocumentID: payload.DesiredDocumentID,
		UserMetadata:      payload.UserMetadata,
		ChunkSize:         payload.ChunkSize,
		ChunkOverlap:      payload.ChunkOverlap,
	})

	final := types.IngestTaskStatus{TaskID: taskID, UpdatedAt: time.Now().UTC()}
	if err != nil {
		final.State = "failed"
		final.Error = err.Error()
	} else {
		final.State = "succeeded"
		final.Result = result
	}
	if setErr := w.status.setStatus(ctx, final); setErr != nil {
		common.PipelineWarn(ctx, stage, "write final task status failed", map[string]interface{}{"task_id": taskID, "error": setErr.Error()})
	}

	// Task errors are swallowed: failure is communicated through the status
	// record, not asynq's own retry machinery, since an ingest failure is
	// rarely transient (bad file, oversized upload, duplicate id).
	return nil
}
