package nlp

import "strings"

// irregular forms the suffix rules get wrong.
var irregular = map[string]string{
	"went": "go", "gone": "go", "going": "go",
	"flew": "fly", "flown": "fly", "flies": "fly", "flying": "fly",
	"took": "take", "taken": "take", "taking": "take",
	"saw": "see", "seen": "see",
	"ate": "eat", "eaten": "eat",
	"stayed": "stay", "staying": "stay", "stays": "stay",
	"hiking": "hike", "hiked": "hike", "hikes": "hike",
	"diving": "dive", "dived": "dive", "dove": "dive",
	"exploring": "explore", "explored": "explore",
	"leaving": "leave", "left": "leave",
	"children": "child", "people": "person", "men": "man", "women": "woman",
	"was": "be", "were": "be", "is": "be", "are": "be", "been": "be",
	"has": "have", "had": "have",
	"islands": "island", "series": "series", "news": "news",
	"better": "good", "best": "good",
}

// Lemma reduces a lower-case word to a dictionary form using an irregular table
// and plural/verb suffix rules.
func Lemma(w string) string {
	if l, ok := irregular[w]; ok {
		return l
	}
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case n > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") ||
		strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes") || strings.HasSuffix(w, "zes")):
		return w[:n-2]
	case n > 5 && strings.HasSuffix(w, "ing") && hasVowel(w[:n-3]):
		return undouble(w[:n-3])
	case n > 4 && strings.HasSuffix(w, "ied"):
		return w[:n-3] + "y"
	case n > 4 && strings.HasSuffix(w, "ed") && !strings.HasSuffix(w, "eed") && hasVowel(w[:n-2]):
		return undouble(w[:n-2])
	case n > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:n-1]
	}
	return w
}

// undouble collapses a doubled final consonant left by suffix stripping
// ("planned" -> "plann" -> "plan").
func undouble(stem string) string {
	n := len(stem)
	if n < 3 || stem[n-1] != stem[n-2] {
		return stem
	}
	switch stem[n-1] {
	case 'l', 's', 'z', 'f', 'a', 'e', 'i', 'o', 'u':
		return stem
	}
	return stem[:n-1]
}

func hasVowel(s string) bool {
	return strings.ContainsAny(s, "aeiouy")
}
