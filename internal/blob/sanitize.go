package blob

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// ligatureReplacements covers known German ligatures (spec.md §9 design
// note: "ä→ae, ö→oe, ü→ue, ß→ss, etc.").
var ligatureReplacements = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"é", "e", "è", "e", "ê", "e", "à", "a", "â", "a",
	"ç", "c", "ñ", "n",
)

// hostileChars matches runs of filesystem-hostile characters, each run
// replaced with one underscore in the sanitized filename.
var hostileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName produces an ASCII-safe filename for use in a blob key and
// in the ASCII-safe object-metadata field, replacing known ligatures and
// replacing each run of other unsafe characters with "_"; leading and
// trailing '.', '_' and '-' are trimmed, and an empty result becomes "file".
func SanitizeFileName(original string) string {
	replaced := ligatureReplacements.Replace(original)
	sanitized := hostileChars.ReplaceAllString(replaced, "_")
	sanitized = strings.Trim(sanitized, "._-")
	if sanitized == "" {
		return "file"
	}
	return sanitized
}

// EncodeOriginalFileName base64-encodes the original (possibly non-ASCII)
// filename for round-trip storage in object metadata
// ("originalFileNameBase64").
func EncodeOriginalFileName(original string) string {
	return base64.StdEncoding.EncodeToString([]byte(original))
}

// DecodeOriginalFileName reverses EncodeOriginalFileName.
func DecodeOriginalFileName(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ObjectKey builds the flat-container object key for an original file:
// "<uuid>_<sanitized-filename>".
func ObjectKey(documentID, originalFileName string) string {
	return documentID + "_" + SanitizeFileName(originalFileName)
}

// TextContentKey builds the object key for a non-native-text original's
// extracted plaintext: "<uuid>_<sanitized-filename>_content.txt".
func TextContentKey(documentID, originalFileName string) string {
	return ObjectKey(documentID, originalFileName) + "_content.txt"
}
