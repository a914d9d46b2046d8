package domain

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower is the case folding applied to messages before matching. Knowledge
// keys must already be in this form.
func Lower(s string) string {
	// a Caser is stateful; one per call
	return cases.Lower(language.Und).String(s)
}
