package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName_ReplacesLigatures(t *testing.T) {
	assert.Equal(t, "Strasse_Groesse.txt", SanitizeFileName("Straße_Größe.txt"))
}

func TestSanitizeFileName_StripsHostileChars(t *testing.T) {
	result := SanitizeFileName("my file (v2)?.pdf")
	assert.NotContains(t, result, " ")
	assert.NotContains(t, result, "(")
	assert.NotContains(t, result, "?")
}

func TestSanitizeFileName_EmptyFallsBackToFile(t *testing.T) {
	assert.Equal(t, "file", SanitizeFileName("???"))
}

func TestEncodeDecodeOriginalFileName_RoundTrips(t *testing.T) {
	original := "Bericht_für_März.pdf"
	encoded := EncodeOriginalFileName(original)
	decoded, err := DecodeOriginalFileName(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "doc-1_note.txt", ObjectKey("doc-1", "note.txt"))
}

func TestTextContentKey(t *testing.T) {
	assert.Equal(t, "doc-1_note.txt_content.txt", TextContentKey("doc-1", "note.txt"))
}
