// Package cjk provides IsCJK (Unicode script tables), used by the chunker's
// sentence-boundary detection, and wraps yanyiwu/gojieba for the CJK-aware
// term splitting used by the scorer's meaningful term extraction (spec.md §4.3 applies to German/English; this extends the
// same idea to Chinese content, which has no whitespace word boundaries).
package cjk

import (
	"sync"
	"unicode"

	"github.com/yanyiwu/gojieba"
)

var (
	once     sync.Once
	segmenter *gojieba.Jieba
)

func instance() *gojieba.Jieba {
	once.Do(func() {
		segmenter = gojieba.NewJieba()
	})
	return segmenter
}

// IsCJK reports whether r belongs to a CJK Unicode block, used to decide
// whether a sentence-end punctuation mark is immediately followed by more
// CJK text (which has no inter-word space) rather than Latin text.
func IsCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)
}

// ContainsCJK reports whether s contains any CJK rune, used to decide
// whether to run the dictionary-based segmenter at all (it is unnecessary,
// and wasteful, for pure Latin-script content).
func ContainsCJK(s string) bool {
	for _, r := range s {
		if IsCJK(r) {
			return true
		}
	}
	return false
}

// Split tokenizes s into words. For CJK content it runs jieba's dictionary
// segmenter; for everything else it returns s unchanged as a single token,
// leaving whitespace/punctuation splitting to the caller.
func Split(s string) []string {
	if !ContainsCJK(s) {
		return []string{s}
	}
	return instance().CutForSearch(s, true)
}
