package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_ExactMatchWithoutVector(t *testing.T) {
	s := New()
	score := s.Score("the configuration file controls database connections", "database configuration", nil)
	assert.Greater(t, score, 0.5)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScore_NoOverlapIsZero(t *testing.T) {
	s := New()
	score := s.Score("completely unrelated content about cooking recipes", "database configuration", nil)
	assert.Equal(t, 0.0, score)
}

func TestScore_BlendsWithVectorScore(t *testing.T) {
	s := New()
	vec := 0.9
	withVec := s.Score("database configuration settings", "database configuration", &vec)
	withoutVec := s.Score("database configuration settings", "database configuration", nil)
	assert.NotEqual(t, withVec, withoutVec)
	assert.InDelta(t, 0.7*vec+0.3*withoutVec, withVec, 1e-9)
}

func TestScore_SynonymMatch(t *testing.T) {
	s := New()
	score := s.Score("die datenbank speichert alle einstellungen", "database configuration", nil)
	assert.Greater(t, score, 0.0)
}

func TestScore_EmptyQueryTermsWithVectorFallsBackToVector(t *testing.T) {
	s := New()
	vec := 0.42
	score := s.Score("some content", "to a", &vec)
	assert.Equal(t, 0.42, score)
}

func TestScore_StableWithinZeroToOne(t *testing.T) {
	s := New()
	vec := 1.0
	score := s.Score("database configuration database configuration database", "database configuration", &vec)
	assert.LessOrEqual(t, score, 1.0)
}

func TestExtractTerms_DropsStopWordsAndShortTerms(t *testing.T) {
	terms := extractTerms("the db is a it is not so easy")
	for _, term := range terms {
		assert.Greater(t, len(term), 2)
	}
}

func TestExtractTerms_CJK(t *testing.T) {
	terms := extractTerms("数据库配置非常重要")
	assert.NotEmpty(t, terms)
}

func TestCombine_DocumentReferenceBoostMatchesFileName(t *testing.T) {
	result := Combine(0.5, "doc-uuid-1", "manual.pdf", "some content with keyword", []string{"manual.pdf"}, []string{"keyword"})
	assert.InDelta(t, 0.5*1.8, result, 1e-9)
}

func TestCombine_DocumentReferenceBoostIgnoresContentMatch(t *testing.T) {
	// documentReferences hold filenames, not chunk body text, so a reference
	// that happens to appear in the content must not trigger the boost.
	result := Combine(0.5, "doc-uuid-1", "other.pdf", "mentions manual.pdf in passing", []string{"manual.pdf"}, []string{"keyword"})
	assert.Equal(t, 0.5, result)
}

func TestCombine_HistoryKeywordBoostWhenNoReferenceMatches(t *testing.T) {
	result := Combine(0.5, "doc-999", "other.pdf", "some content with keyword", []string{"manual.pdf"}, []string{"keyword"})
	assert.InDelta(t, 0.5*1.3, result, 1e-9)
}

func TestCombine_NoBoostWhenNothingMatches(t *testing.T) {
	result := Combine(0.5, "doc-999", "other.pdf", "unrelated content", []string{"manual.pdf"}, []string{"nomatch"})
	assert.Equal(t, 0.5, result)
}

func TestFollowUpBoost(t *testing.T) {
	assert.InDelta(t, 1.25, FollowUpBoost(0.5, true), 1e-9)
	assert.Equal(t, 0.5, FollowUpBoost(0.5, false))
}
