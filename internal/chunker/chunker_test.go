package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextReturnsSingleChunk(t *testing.T) {
	c := New()
	chunks := c.Chunk("hello world", 300, 20)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunk_EmptyTextReturnsNil(t *testing.T) {
	c := New()
	assert.Nil(t, c.Chunk("   ", 300, 20))
	assert.Nil(t, c.Chunk("", 300, 20))
}

func TestChunk_InvalidSizesFallBackToDefaults(t *testing.T) {
	c := New()
	text := strings.Repeat("word ", 200)
	chunks := c.Chunk(text, 0, -5)
	require.NotEmpty(t, chunks)
}

func TestChunk_OverlapAndOrder(t *testing.T) {
	c := New()
	paragraphs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		paragraphs = append(paragraphs, strings.Repeat("lorem ipsum dolor sit amet. ", 5))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := c.Chunk(text, 100, 20)
	require.Greater(t, len(chunks), 1, "long text should split into multiple chunks")

	for _, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestChunk_PrefersParagraphThenSentenceBoundary(t *testing.T) {
	c := New()
	text := "First paragraph ends here." + strings.Repeat("x", 50) + "\n\nSecond paragraph starts now and goes on for a while to push past the window."

	chunks := c.Chunk(text, 80, 10)
	require.NotEmpty(t, chunks)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(chunks[0]), "here."+strings.Repeat("x", 50)) ||
		strings.Contains(chunks[0], "paragraph"))
}

func TestChunk_CJKSentenceBoundary(t *testing.T) {
	c := New()
	text := strings.Repeat("这是一个测试句子。", 40)
	chunks := c.Chunk(text, 50, 5)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk)
	}
}

func TestChunk_NoInfiniteLoopOnDegenerateOverlap(t *testing.T) {
	c := New()
	text := strings.Repeat("a", 1000)
	chunks := c.Chunk(text, 10, 9)
	require.NotEmpty(t, chunks)
	assert.Less(t, len(chunks), 1000, "progress guard must prevent near-infinite chunking")
}
