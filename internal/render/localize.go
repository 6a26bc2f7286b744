package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// newPrinter builds a printer for locale whose catalog holds the configured
// translations. Message ids are the English format strings; an id missing
// from the table is printed as is. An unparsable locale falls back to
// English.
func newPrinter(locale string, translations map[string]string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for id, msg := range translations {
		// SetString only fails on malformed message syntax, which it cannot
		// see for plain strings.
		_ = b.SetString(tag, id, msg)
	}
	return message.NewPrinter(tag, message.Catalog(b))
}
