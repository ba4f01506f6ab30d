package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_NativeTextByExtension(t *testing.T) {
	e := New()
	text, isNative, err := e.Extract(context.Background(), "notes.md", "", strings.NewReader("# Title\nbody"))
	require.NoError(t, err)
	assert.True(t, isNative)
	assert.Equal(t, "# Title\nbody", text)
}

func TestExtract_NativeTextByContentType(t *testing.T) {
	e := New()
	text, isNative, err := e.Extract(context.Background(), "blob", "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	assert.True(t, isNative)
	assert.Equal(t, `{"a":1}`, text)
}

func TestExtract_BinaryFallsBackToBestEffort(t *testing.T) {
	e := New()
	binary := []byte{0x00, 0x01, 'h', 'e', 'l', 'l', 'o', 0x02, ' ', ' ', 'w', 'o', 'r', 'l', 'd'}
	text, isNative, err := e.Extract(context.Background(), "file.pdf", "application/pdf", strings.NewReader(string(binary)))
	require.NoError(t, err)
	assert.False(t, isNative)
	assert.Contains(t, text, "hello")
	assert.Contains(t, text, "world")
}

func TestExtract_EmptyBodyReturnsEmptyString(t *testing.T) {
	e := New()
	text, _, err := e.Extract(context.Background(), "empty.txt", "text/plain", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}
