package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftmind/driftmind/internal/common"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// textLikeExtensions and textLikeContentTypePrefixes decide whether a
// result's original file, not just its chunk content, is worth fetching in
// full for chat context (spec.md §4.7).
var textLikeExtensions = map[string]bool{"txt": true, "md": true, "json": true, "xml": true, "csv": true, "log": true}

func isTextLike(contentType, blobPath string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/") || ct == "application/json" || ct == "application/xml" {
		return true
	}
	ext := ""
	if idx := strings.LastIndex(blobPath, "."); idx != -1 {
		ext = strings.ToLower(blobPath[idx+1:])
	}
	return textLikeExtensions[ext]
}

const groundedSystemPromptTemplate = `You are a helpful assistant that answers questions ONLY using the sources provided below. Always cite which source you drew information from. If the sources do not contain the answer, say so plainly and do not use outside knowledge. Respond in %s.

Sources:
%s`

const historyOnlySystemPromptTemplate = `You are a helpful assistant continuing a conversation. No document sources are available for this question. Answer ONLY using the prior conversation below; do not draw on general knowledge. If the conversation does not contain the answer, say so plainly. Respond in %s.`

type fetchTarget struct {
	container string
	path      string
}

// buildContextBlock assembles the "Sources:" block of the system prompt.
// Full-text fetches for distinct blobPaths run concurrently via errgroup
// (spec.md §5's permitted chat-context parallelism point), each bounded by
// its own 12s timeout and logged-but-non-fatal on failure.
func buildContextBlock(ctx context.Context, blobGateway interfaces.BlobGateway, results []*types.SearchResult) string {
	targets := make(map[string]fetchTarget)
	for _, r := range results {
		blobPath := r.BlobPath
		wantsFullText := r.TextContentBlobPath != "" || isTextLike(r.ContentType, blobPath)
		fetchPath := r.TextContentBlobPath
		if fetchPath == "" {
			fetchPath = blobPath
		}
		if fetchPath == "" || !wantsFullText {
			continue
		}
		if _, ok := targets[fetchPath]; !ok {
			targets[fetchPath] = fetchTarget{container: r.BlobContainer, path: fetchPath}
		}
	}

	fullTexts := make(map[string]string, len(targets))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for path, target := range targets {
		path, target := path, target
		g.Go(func() error {
			text, err := fetchFullText(gctx, blobGateway, target.container, target.path)
			if err != nil {
				common.PipelineWarn(ctx, "ChatGateway", "fetch_full_text", map[string]interface{}{
					"blob_path": path, "error": err.Error(),
				})
				return nil
			}
			mu.Lock()
			fullTexts[path] = text
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var sb strings.Builder
	printed := make(map[string]bool)
	for i, r := range results {
		fmt.Fprintf(&sb, "[Source %d: %s]\n%s\n", i+1, sourceLabel(r), r.Content)

		fetchPath := r.TextContentBlobPath
		if fetchPath == "" {
			fetchPath = r.BlobPath
		}
		if fullText, ok := fullTexts[fetchPath]; ok && !printed[fetchPath] {
			printed[fetchPath] = true
			fmt.Fprintf(&sb, "[Full document text for %s]\n%s\n", sourceLabel(r), fullText)
		}
	}
	return sb.String()
}

func sourceLabel(r *types.SearchResult) string {
	if r.OriginalFileName != "" {
		return r.OriginalFileName
	}
	return r.DocumentID
}

func fetchFullText(ctx context.Context, blobGateway interfaces.BlobGateway, container, path string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	reader, err := blobGateway.Download(fetchCtx, container, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var sb strings.Builder
	buf := make([]byte, 32*1024)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if readErr != nil {
			break
		}
	}
	return sb.String(), nil
}

func groundedSystemPrompt(uiLanguage, contextBlock string) string {
	return fmt.Sprintf(groundedSystemPromptTemplate, uiLanguage, contextBlock)
}

func historyOnlySystemPrompt(uiLanguage string) string {
	return fmt.Sprintf(historyOnlySystemPromptTemplate, uiLanguage)
}
