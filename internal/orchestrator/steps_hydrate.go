package orchestrator

import (
	"context"

	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// hydratePlugin implements spec.md §4.1 step 5: one bulk index call to fetch
// chunk-0 of every distinct document represented in the hit list, then fills
// per-document fields on each hit, falling back to the hit's own fields when
// chunk-0 wasn't found.
type hydratePlugin struct {
	index interfaces.IndexGateway
}

func (p *hydratePlugin) ActivationEvents() []Step { return []Step{StepHydrate} }

func (p *hydratePlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	documentIDs := distinctDocumentIDs(state.Hits)

	chunk0s, err := p.index.GetChunk0s(ctx, documentIDs)
	if err != nil {
		return newPluginError(step, err)
	}

	results := make([]*types.SearchResult, 0, len(state.Hits))
	for _, hit := range state.Hits {
		results = append(results, hydrateHit(hit, chunk0s))
	}
	state.Results = results
	return next()
}

func distinctDocumentIDs(hits []types.IndexHit) []string {
	seen := make(map[string]bool, len(hits))
	var ids []string
	for _, h := range hits {
		if !seen[h.Chunk.DocumentID] {
			seen[h.Chunk.DocumentID] = true
			ids = append(ids, h.Chunk.DocumentID)
		}
	}
	return ids
}

func hydrateHit(hit types.IndexHit, chunk0s map[string]types.DocumentChunk) *types.SearchResult {
	chunk := hit.Chunk
	result := &types.SearchResult{
		ID:         chunk.ID,
		DocumentID: chunk.DocumentID,
		ChunkIndex: chunk.ChunkIndex,
		Content:    chunk.Content,
		Metadata:   chunk.Metadata,
		VectorScore: hit.VectorScore,
		Score:      hit.Score,

		OriginalFileName:    chunk.OriginalFileName,
		ContentType:         chunk.ContentType,
		FileSizeBytes:       chunk.FileSizeBytes,
		BlobPath:            chunk.BlobPath,
		BlobContainer:       chunk.BlobContainer,
		TextContentBlobPath: chunk.TextContentBlobPath,
	}

	if root, ok := chunk0s[chunk.DocumentID]; ok {
		result.OriginalFileName = root.OriginalFileName
		result.ContentType = root.ContentType
		result.FileSizeBytes = root.FileSizeBytes
		result.BlobPath = root.BlobPath
		result.BlobContainer = root.BlobContainer
		result.TextContentBlobPath = root.TextContentBlobPath
	}

	return result
}
