package locale

import (
	"golang.org/x/text/language"
)

// Strings are the headings drawn on generated pages.
type Strings struct {
	Contents  string
	Questions string
	Solutions string
	// SharedFor prefixes the question list under a shared image.
	SharedFor string
}

var (
	supported = []language.Tag{
		language.German,
		language.French,
		language.Italian,
		language.English,
	}
	matcher = language.NewMatcher(supported)

	catalog = map[language.Tag]Strings{
		language.German: {
			Contents:  "Inhaltsverzeichnis",
			Questions: "Fragen",
			Solutions: "Lösungen",
			SharedFor: "Zu den Fragen",
		},
		language.French: {
			Contents:  "Table des matières",
			Questions: "Questions",
			Solutions: "Solutions",
			SharedFor: "Pour les questions",
		},
		language.Italian: {
			Contents:  "Indice",
			Questions: "Domande",
			Solutions: "Soluzioni",
			SharedFor: "Per le domande",
		},
		language.English: {
			Contents:  "Contents",
			Questions: "Questions",
			Solutions: "Solutions",
			SharedFor: "For questions",
		},
	}
)

// For picks the closest supported language for a book's language code.
// Unknown or empty codes fall back to German.
func For(code string) Strings {
	tag, _ := language.MatchStrings(matcher, code)
	base, _ := tag.Base()
	for _, t := range supported {
		if b, _ := t.Base(); b == base {
			return catalog[t]
		}
	}
	return catalog[language.German]
}
