package types

// FieldKind is the logical type of one schema field (§9 "attribute-driven
// index schema" design note, replaced by this declarative descriptor).
type FieldKind string

const (
	FieldKindKeyword FieldKind = "keyword"
	FieldKindText    FieldKind = "text"
	FieldKindInt     FieldKind = "int"
	FieldKindDate    FieldKind = "date"
	FieldKindVector  FieldKind = "vector"
)

// VectorSpec describes an ANN-indexed field's dimension and metric.
type VectorSpec struct {
	Dimension int
	Metric    string // "cosine"
}

// SchemaField is one field of the index schema descriptor that drives both
// DDL (Gateway.Initialize) and schema upgrades.
type SchemaField struct {
	Name       string
	Kind       FieldKind
	Filterable bool
	Sortable   bool
	Vector     *VectorSpec
}

// ChunkSchema is the declarative descriptor for the DocumentChunk schema
// (spec.md §3, §6). Every Index Gateway backend drives its DDL from this.
func ChunkSchema(embeddingDim int) []SchemaField {
	return []SchemaField{
		{Name: "id", Kind: FieldKindKeyword, Filterable: true},
		{Name: "document_id", Kind: FieldKindKeyword, Filterable: true},
		{Name: "chunk_index", Kind: FieldKindInt, Filterable: true},
		{Name: "content", Kind: FieldKindText},
		{Name: "embedding", Kind: FieldKindVector, Vector: &VectorSpec{Dimension: embeddingDim, Metric: "cosine"}},
		{Name: "metadata", Kind: FieldKindKeyword},
		{Name: "created_at", Kind: FieldKindDate, Filterable: true, Sortable: true},
		{Name: "original_file_name", Kind: FieldKindKeyword, Filterable: true},
		{Name: "content_type", Kind: FieldKindKeyword, Filterable: true},
		{Name: "file_size_bytes", Kind: FieldKindInt, Filterable: true},
		{Name: "blob_path", Kind: FieldKindKeyword, Filterable: true},
		{Name: "blob_container", Kind: FieldKindKeyword, Filterable: true},
		{Name: "text_content_blob_path", Kind: FieldKindKeyword, Filterable: true},
	}
}

// IndexHit is one ranked hit returned by a keyword/vector/hybrid search call,
// before document-metadata hydration.
type IndexHit struct {
	Chunk       DocumentChunk
	Score       float64 // backend fusion or ANN score
	VectorScore float64 // present for hybrid/vector hits
}
