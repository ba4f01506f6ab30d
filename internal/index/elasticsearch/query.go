// Package elasticsearch implements the Index Gateway (spec.md §4.6) against
// Elasticsearch, in both the v7 and v8 wire-compatible client flavors the
// teacher carries side by side (its RETRIEVE_DRIVER switch between
// "elasticsearch_v7" and "elasticsearch_v8", internal/handler/system.go).
// This file holds the query/mapping JSON shared by both client versions,
// since the DSL itself is unchanged between them.
package elasticsearch

import (
	"time"

	"github.com/driftmind/driftmind/internal/types"
)

// buildMapping turns the declarative ChunkSchema into an ES mapping body.
func buildMapping(embeddingDim int) map[string]interface{} {
	properties := map[string]interface{}{}
	for _, f := range types.ChunkSchema(embeddingDim) {
		switch f.Kind {
		case types.FieldKindKeyword:
			properties[f.Name] = map[string]interface{}{"type": "keyword"}
		case types.FieldKindText:
			properties[f.Name] = map[string]interface{}{
				"type":   "text",
				"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}},
			}
		case types.FieldKindInt:
			properties[f.Name] = map[string]interface{}{"type": "long"}
		case types.FieldKindDate:
			properties[f.Name] = map[string]interface{}{"type": "date"}
		case types.FieldKindVector:
			properties[f.Name] = map[string]interface{}{
				"type":       "dense_vector",
				"dims":       f.Vector.Dimension,
				"index":      true,
				"similarity": "cosine",
			}
		}
	}
	return map[string]interface{}{"mappings": map[string]interface{}{"properties": properties}}
}

// chunkToDoc serializes a DocumentChunk to its ES document body.
func chunkToDoc(c types.DocumentChunk) map[string]interface{} {
	return map[string]interface{}{
		"id":                     c.ID,
		"document_id":            c.DocumentID,
		"chunk_index":            c.ChunkIndex,
		"content":                c.Content,
		"embedding":              c.Embedding,
		"metadata":               c.Metadata,
		"created_at":             c.CreatedAt.Format(time.RFC3339),
		"original_file_name":     c.OriginalFileName,
		"content_type":           c.ContentType,
		"file_size_bytes":        c.FileSizeBytes,
		"blob_path":              c.BlobPath,
		"blob_container":         c.BlobContainer,
		"text_content_blob_path": c.TextContentBlobPath,
	}
}

// docSource mirrors the JSON shape of a hit's _source, used for decoding.
type docSource struct {
	ID                  string  `json:"id"`
	DocumentID          string  `json:"document_id"`
	ChunkIndex          int     `json:"chunk_index"`
	Content             string  `json:"content"`
	Embedding           []float32 `json:"embedding"`
	Metadata            string  `json:"metadata"`
	CreatedAt           string  `json:"created_at"`
	OriginalFileName    string  `json:"original_file_name"`
	ContentType         string  `json:"content_type"`
	FileSizeBytes       int64   `json:"file_size_bytes"`
	BlobPath            string  `json:"blob_path"`
	BlobContainer       string  `json:"blob_container"`
	TextContentBlobPath string  `json:"text_content_blob_path"`
}

func (d docSource) toChunk() types.DocumentChunk {
	createdAt, _ := time.Parse(time.RFC3339, d.CreatedAt)
	return types.DocumentChunk{
		ID:                  d.ID,
		DocumentID:          d.DocumentID,
		ChunkIndex:          d.ChunkIndex,
		Content:             d.Content,
		Embedding:           d.Embedding,
		Metadata:            d.Metadata,
		CreatedAt:           createdAt,
		OriginalFileName:    d.OriginalFileName,
		ContentType:         d.ContentType,
		FileSizeBytes:       d.FileSizeBytes,
		BlobPath:            d.BlobPath,
		BlobContainer:       d.BlobContainer,
		TextContentBlobPath: d.TextContentBlobPath,
	}
}

type searchHit struct {
	Source docSource `json:"_source"`
	Score  float64   `json:"_score"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

func keywordQuery(query string, top int, filterDocumentID string) map[string]interface{} {
	must := []map[string]interface{}{{"match": map[string]interface{}{"content": query}}}
	body := map[string]interface{}{"size": top, "query": boolQuery(must, filterDocumentID)}
	return body
}

// vectorQuery uses script_score cosine similarity so the same query shape
// works unchanged across ES v7 and v8 (native kNN search syntax differs
// between the two; script_score is the portable common denominator).
func vectorQuery(vector []float32, top int, filterDocumentID string) map[string]interface{} {
	filter := []map[string]interface{}{{"exists": map[string]interface{}{"field": "embedding"}}}
	base := map[string]interface{}{"bool": map[string]interface{}{"filter": mergeFilter(filter, filterDocumentID)}}
	return map[string]interface{}{
		"size": top,
		"query": map[string]interface{}{
			"script_score": map[string]interface{}{
				"query": base,
				"script": map[string]interface{}{
					"source": "cosineSimilarity(params.query_vector, 'embedding') + 1.0",
					"params": map[string]interface{}{"query_vector": vector},
				},
			},
		},
	}
}

func hybridQuery(query string, vector []float32, top int, filterDocumentID string) map[string]interface{} {
	must := []map[string]interface{}{{"match": map[string]interface{}{"content": query}}}
	textQuery := boolQuery(must, filterDocumentID)
	return map[string]interface{}{
		"size": top,
		"query": map[string]interface{}{
			"script_score": map[string]interface{}{
				"query": textQuery,
				"script": map[string]interface{}{
					"source": "_score + cosineSimilarity(params.query_vector, 'embedding') + 1.0",
					"params": map[string]interface{}{"query_vector": vector},
				},
			},
		},
	}
}

func boolQuery(must []map[string]interface{}, filterDocumentID string) map[string]interface{} {
	b := map[string]interface{}{"must": must}
	if filterDocumentID != "" {
		b["filter"] = []map[string]interface{}{{"term": map[string]interface{}{"document_id": filterDocumentID}}}
	}
	return map[string]interface{}{"bool": b}
}

func mergeFilter(filter []map[string]interface{}, filterDocumentID string) []map[string]interface{} {
	if filterDocumentID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"document_id": filterDocumentID}})
	}
	return filter
}

func chunk0sQuery(documentIDs []string) map[string]interface{} {
	return map[string]interface{}{
		"size": len(documentIDs),
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"terms": map[string]interface{}{"document_id": documentIDs}},
					{"term": map[string]interface{}{"chunk_index": 0}},
				},
			},
		},
	}
}
