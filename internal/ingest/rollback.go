package ingest

import (
	"context"

	"github.com/driftmind/driftmind/internal/common"
)

// rollback tracks everything an in-flight Ingest call has written so it can
// be undone on any later-step failure (spec.md §7: "any failure after step
// (b) must attempt to delete uploaded blobs; any failure after (g) that
// fails validation must also delete index entries"). Best-effort: cleanup
// failures are logged, never returned, since the caller already has the
// original failure to report.
type rollback struct {
	p *Pipeline

	blobKeys        []string
	documentIndexed bool
	documentID      string
	committed       bool
}

func newRollback(p *Pipeline) *rollback {
	return &rollback{p: p}
}

// run is deferred by Ingest; it is a no-op once committed is set on the
// success path.
func (r *rollback) run(ctx context.Context) {
	if r.committed {
		return
	}

	if r.documentIndexed && r.documentID != "" {
		if _, err := r.p.index.DeleteDocument(ctx, r.documentID); err != nil {
			common.PipelineWarn(ctx, stage, "rollback: delete indexed chunks failed", map[string]interface{}{"document_id": r.documentID, "error": err.Error()})
		}
	}

	for _, key := range r.blobKeys {
		if err := r.p.blob.Delete(ctx, r.p.blobCfg.Container, key); err != nil {
			common.PipelineWarn(ctx, stage, "rollback: delete blob failed", map[string]interface{}{"blob_key": key, "error": err.Error()})
		}
	}
}
