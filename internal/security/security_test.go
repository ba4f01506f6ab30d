package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInput_TrimsWhitespace(t *testing.T) {
	out, ok := ValidateInput("  hello world  ")
	assert.True(t, ok)
	assert.Equal(t, "hello world", out)
}

func TestValidateInput_RejectsControlCharacters(t *testing.T) {
	_, ok := ValidateInput("hello\x00world")
	assert.False(t, ok)
}

func TestValidateInput_AllowsNewlinesAndTabs(t *testing.T) {
	_, ok := ValidateInput("line one\nline two\ttabbed")
	assert.True(t, ok)
}

func TestValidateInput_EmptyIsValid(t *testing.T) {
	out, ok := ValidateInput("")
	assert.True(t, ok)
	assert.Equal(t, "", out)
}

func TestSanitizeForLog_StripsNewlines(t *testing.T) {
	out := SanitizeForLog("evil\nFAKE_LOG_LINE=injected")
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "evil")
}

func TestSanitizeForLog_EmptyReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", SanitizeForLog(""))
}
