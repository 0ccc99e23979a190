package functions

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UnicodeCollation orders text by the Unicode Collation Algorithm tailored
// to a language. It must only be used from the connection it is registered
// on.
type UnicodeCollation struct {
	name     string
	collator *collate.Collator
}

// NewUnicodeCollation returns a collation called name for tag.
func NewUnicodeCollation(name string, tag language.Tag, opts ...collate.Option) *UnicodeCollation {
	return &UnicodeCollation{name: name, collator: collate.New(tag, opts...)}
}

func (c *UnicodeCollation) Name() string { return c.name }

func (c *UnicodeCollation) Compare(a, b string) int {
	return c.collator.CompareString(a, b)
}
