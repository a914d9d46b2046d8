package nlp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel_planner/internal/knowledge"
	"travel_planner/internal/nlp"
)

func newAnalyzer(t *testing.T) *nlp.Analyzer {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)
	return nlp.FromKnowledge(kb)
}

func TestAnalyze_KeywordsDropStopwordsAndLemmatize(t *testing.T) {
	a := newAnalyzer(t)

	got := a.Analyze("What are the best cities to visit with beaches?")
	assert.Equal(t, []string{"good", "city", "visit", "beach"}, got.Keywords)
}

func TestAnalyze_KeywordsAreUnique(t *testing.T) {
	a := newAnalyzer(t)

	got := a.Analyze("tips tips and more tips")
	assert.Equal(t, []string{"tip"}, got.Keywords)
}

func TestAnalyze_NonAlphaTokensIgnored(t *testing.T) {
	a := newAnalyzer(t)

	got := a.Analyze("xyz123 42 !!")
	assert.Empty(t, got.Keywords)
	assert.Empty(t, got.Entities)

	got = a.Analyze("best cities2024")
	assert.Equal(t, []string{"good"}, got.Keywords, "a token with digits is dropped whole, not split")

	got = a.Analyze("Trip to Lisbon2 and Porto")
	assert.Equal(t, []string{"porto"}, got.Entities)
}

func TestAnalyze_Entities(t *testing.T) {
	a := newAnalyzer(t)

	t.Run("gazetteer matches lower-case text", func(t *testing.T) {
		got := a.Analyze("i want to visit new york and costa rica")
		assert.Equal(t, []string{"new york", "costa rica"}, got.Entities)
	})

	t.Run("capitalized spans are entities, lower-cased", func(t *testing.T) {
		got := a.Analyze("Tell me about Buenos Aires. Is it near Montevideo?")
		assert.Equal(t, []string{"buenos aires", "montevideo"}, got.Entities)
	})

	t.Run("sentence-initial words are not entities", func(t *testing.T) {
		got := a.Analyze("Recommend something")
		assert.Empty(t, got.Entities)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		got := a.Analyze("Paris or paris?")
		assert.Equal(t, []string{"paris"}, got.Entities)
	})
}

func TestLemma(t *testing.T) {
	cases := map[string]string{
		"cities":       "city",
		"beaches":      "beach",
		"hotels":       "hotel",
		"planned":      "plan",
		"swimming":     "swim",
		"staying":      "stay",
		"went":         "go",
		"paris":        "paris",
		"spring":       "spring",
		"need":         "need",
		"sightseeing":  "sightsee",
		"destinations": "destination",
	}
	for in, want := range cases {
		assert.Equal(t, want, nlp.Lemma(in), in)
	}
}

func TestIsStopword(t *testing.T) {
	assert.True(t, nlp.IsStopword("the"))
	assert.True(t, nlp.IsStopword("yourselves"))
	assert.False(t, nlp.IsStopword("beach"))
}
