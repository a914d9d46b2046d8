// Package nlp extracts entities and keywords from chat messages.
package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"travel_planner/internal/domain"
)

// Analyzer is a rule-based preprocessor. Entities come from a place-name
// gazetteer plus capitalized spans in the raw text; keywords are lemmatized
// alphabetic tokens with stopwords removed.
type Analyzer struct {
	places [][]string // lower-case token sequences
}

// New builds an Analyzer that recognizes the given place names.
func New(places []string) *Analyzer {
	a := &Analyzer{}
	seen := make(map[string]bool)
	for _, p := range places {
		toks := make([]string, 0, 2)
		for _, t := range tokenize(p) {
			toks = append(toks, t.lower)
		}
		key := strings.Join(toks, " ")
		if len(toks) == 0 || seen[key] {
			continue
		}
		seen[key] = true
		a.places = append(a.places, toks)
	}
	return a
}

// FromKnowledge uses every destination key and category destination as a place name.
func FromKnowledge(kb *domain.Knowledge) *Analyzer {
	var places []string
	for _, d := range kb.Destinations {
		places = append(places, d.Key)
	}
	for _, c := range kb.Categories {
		places = append(places, c.Destinations...)
	}
	return New(places)
}

func (a *Analyzer) Analyze(text string) domain.Analysis {
	toks := tokenize(text)
	return domain.Analysis{
		Entities: a.entities(toks),
		Keywords: keywords(toks),
	}
}

func keywords(toks []token) []string {
	out := make([]string, 0, len(toks))
	seen := make(map[string]bool, len(toks))
	for _, t := range toks {
		if !t.alpha || len(t.lower) < 2 || IsStopword(t.lower) {
			continue
		}
		l := Lemma(t.lower)
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func (a *Analyzer) entities(toks []token) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(e string) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}

	for i := 0; i < len(toks); {
		if n := a.matchPlace(toks, i); n > 0 {
			add(joinLower(toks[i : i+n]))
			i += n
			continue
		}
		// capitalized run, skipping sentence-initial words and stopwords
		j := i
		for j < len(toks) && toks[j].alpha && toks[j].capitalized && !toks[j].sentenceStart && !IsStopword(toks[j].lower) {
			j++
		}
		if j > i {
			add(joinLower(toks[i:j]))
			i = j
			continue
		}
		i++
	}
	return out
}

// matchPlace returns the token length of the longest place name starting at i.
func (a *Analyzer) matchPlace(toks []token, i int) int {
	best := 0
	for _, p := range a.places {
		if len(p) <= best || i+len(p) > len(toks) {
			continue
		}
		ok := true
		for k, w := range p {
			if !toks[i+k].alpha || toks[i+k].lower != w {
				ok = false
				break
			}
		}
		if ok {
			best = len(p)
		}
	}
	return best
}

type token struct {
	lower         string
	alpha         bool // letters only; other tokens never become keywords or entities
	capitalized   bool
	sentenceStart bool
}

// tokenize splits text on whitespace and punctuation. A token keeps any
// digits it contains ("cities2024") and is then marked non-alphabetic.
// Sentence punctuation marks the next token as sentence-initial.
func tokenize(text string) []token {
	lower := cases.Lower(language.Und)
	var (
		out     []token
		b       strings.Builder
		alpha   = true
		newSent = true
	)
	flush := func() {
		if b.Len() == 0 {
			return
		}
		raw := b.String()
		first, _ := utf8.DecodeRuneInString(raw)
		out = append(out, token{
			lower:         lower.String(raw),
			alpha:         alpha,
			capitalized:   unicode.IsUpper(first),
			sentenceStart: newSent,
		})
		newSent = false
		alpha = true
		b.Reset()
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r):
			b.WriteRune(r)
			continue
		case unicode.IsNumber(r):
			alpha = false
			b.WriteRune(r)
			continue
		}
		flush()
		switch r {
		case '.', '!', '?', '\n':
			newSent = true
		}
	}
	flush()
	return out
}

func joinLower(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.lower
	}
	return strings.Join(parts, " ")
}
