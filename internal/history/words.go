package history

// followUpPhrases is the case-insensitive substring list from the Glossary
// used by isFollowUp when none of the length-based shortcuts apply.
var followUpPhrases = []string{
	"beispiel", "beispiele", "mehr über", "mehr dazu", "mehr infos",
	"mehr details", "weitere informationen", "nachteile davon",
	"vorteile davon", "probleme dabei", "schwierigkeiten", "andere aspekte",
	"zusätzlich", "außerdem", "darüber hinaus", "kannst du", "könntest du",
	"erklär mir", "sag mir mehr", "gib mir", "zeig mir", "was meinst du",
	"erkläre das", "genauer", "spezifischer", "details",
	"example", "examples", "can you", "could you", "tell me more",
	"give me", "show me", "what do you mean", "explain that", "more about",
	"more details", "more info", "disadvantages", "advantages",
	"problems with", "issues with", "other aspects", "additionally",
	"furthermore", "more specific", "more precise", "elaborate",
}

// questionWords is the Glossary's question-word list, checked against the
// first word of the (lowercased) query, split on non-letter/digit runes.
var questionWords = map[string]bool{
	"was": true, "wie": true, "warum": true, "weshalb": true, "wo": true,
	"wann": true, "wer": true, "welche": true, "welcher": true, "welches": true,
	"what": true, "how": true, "why": true, "where": true, "when": true,
	"who": true, "which": true,
}

// followUpWords is the token set derived from followUpPhrases, used to
// exclude follow-up marker words from keyword extraction (spec.md §4.4,
// "drop stop-words and follow-up-words").
var followUpWords = buildFollowUpWordSet()

func buildFollowUpWordSet() map[string]bool {
	set := make(map[string]bool)
	for _, phrase := range followUpPhrases {
		for _, w := range splitWords(phrase) {
			set[w] = true
		}
	}
	return set
}
