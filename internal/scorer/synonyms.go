package scorer

// synonymGroups is the bilingual synonym map (Glossary: "a bilingual lookup
// enabling matches such as database <-> datenbank <-> sqlite <-> storage").
// Each group is a set of interchangeable terms; two terms match if they
// share a group.
var synonymGroups = [][]string{
	{"database", "datenbank", "sqlite", "storage", "db"},
	{"configure", "konfigurieren", "setup", "config", "einrichten"},
	{"cloud", "azure", "aws", "gcp"},
	{"storage", "files", "datei", "dateien", "speicher"},
	{"error", "fehler", "exception", "ausnahme"},
	{"document", "dokument", "datei", "file"},
	{"search", "suche", "suchen", "retrieval"},
	{"user", "benutzer", "nutzer", "anwender"},
	{"password", "passwort", "kennwort", "credential"},
	{"delete", "löschen", "remove", "entfernen"},
	{"install", "installieren", "setup", "installation"},
	{"server", "dienst", "service"},
	{"network", "netzwerk", "connection", "verbindung"},
	{"backup", "sicherung", "sicherungskopie"},
	{"update", "aktualisieren", "upgrade"},
}

// synonymIndex maps each term to the index of its group in synonymGroups,
// built once so matching is O(1) instead of scanning every group.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]int {
	idx := make(map[string]int)
	for gi, group := range synonymGroups {
		for _, term := range group {
			idx[term] = gi
		}
	}
	return idx
}

// synonymMatch reports whether a and b belong to the same synonym group.
func synonymMatch(a, b string) bool {
	if a == b {
		return false // exact matches are counted separately
	}
	ga, ok := synonymIndex[a]
	if !ok {
		return false
	}
	gb, ok := synonymIndex[b]
	if !ok {
		return false
	}
	return ga == gb
}
