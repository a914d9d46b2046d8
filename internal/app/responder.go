package app

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"travel_planner/internal/domain"
)

const (
	AccommodationAdvice = "🏨 For accommodation, I can recommend:\n" +
		"- Luxury hotels in city centers\n" +
		"- Boutique hotels\n" +
		"- Vacation rentals\n" +
		"- Hostels for budget travel\n\n" +
		"Which destination are you considering?"

	TipsHeader   = "📋 Travel Tips: 📋\n\n"
	TipBullet    = "• "
	TipsClosing  = "\n\nNeed more specific advice?"
	TipsPerReply = 3

	CategoryPrompt = "Which destination would you like to know more about?"
)

// FallbackReplies answer messages no rule matched.
var FallbackReplies = [...]string{
	"I'm here to help with travel planning! Try asking about destinations, activities, or travel tips.",
	"I specialize in travel advice. Want to know about a specific destination or type of vacation?",
	"Let's talk travel! Where would you like to go or what kind of experience are you looking for?",
	"I can help you plan your next trip. What destination or activity interests you?",
}

var (
	accommodationTriggers = []string{"hotel", "accommodation", "stay"}
	tipTriggers           = []string{"tip", "advice", "pack"}
)

// Responder picks a reply for a message from the knowledge base. Rules are
// tried in a fixed order and the first match wins: destination, category,
// accommodation, tips, fallback. All tests are plain substring tests.
type Responder struct {
	kb  *domain.Knowledge
	rnd domain.Rand
}

func NewResponder(kb *domain.Knowledge, rnd domain.Rand) *Responder {
	return &Responder{kb: kb, rnd: rnd}
}

// SelectResponse returns the reply text for lower-cased text.
func (r *Responder) SelectResponse(text string, entities, keywords []string) string {
	return r.Select(domain.Query{Text: text, Entities: entities, Keywords: keywords}).Text
}

func (r *Responder) Select(q domain.Query) domain.Reply {
	for _, d := range r.kb.Destinations {
		if strings.Contains(q.Text, d.Key) {
			return domain.Reply{Branch: domain.BranchDestination, Text: destinationBlock(d)}
		}
	}

	for _, c := range r.kb.Categories {
		if strings.Contains(q.Text, c.Key) || anyContains(q.Keywords, c.Key) {
			return domain.Reply{Branch: domain.BranchCategory, Text: categoryBlock(c)}
		}
	}

	if containsAny(q.Text, accommodationTriggers) {
		return domain.Reply{Branch: domain.BranchAccommodation, Text: AccommodationAdvice}
	}

	if containsAny(q.Text, tipTriggers) {
		return domain.Reply{Branch: domain.BranchTips, Text: r.tipsBlock()}
	}

	return domain.Reply{Branch: domain.BranchFallback, Text: FallbackReplies[r.rnd.IntN(len(FallbackReplies))]}
}

func destinationBlock(d domain.Destination) string {
	acts := d.Activities
	if len(acts) > 3 {
		acts = acts[:3]
	}
	title := cases.Title(language.English).String(d.Key)

	var b strings.Builder
	b.WriteString("🌆 " + title + " 🌆\n\n")
	b.WriteString(d.Description + "\n\n")
	b.WriteString("Popular activities: " + strings.Join(acts, ", ") + "\n")
	b.WriteString("Best time to visit: " + d.BestTime + "\n")
	b.WriteString("Accommodation: " + d.Accommodation)
	return b.String()
}

func categoryBlock(c domain.Category) string {
	return "🏖️ Great " + c.Key + " destinations: 🏖️\n\n" +
		strings.Join(c.Destinations, ", ") + "\n\n" +
		CategoryPrompt
}

// tipsBlock samples TipsPerReply distinct tips with a partial Fisher-Yates shuffle.
func (r *Responder) tipsBlock() string {
	pool := append([]string(nil), r.kb.Tips...)
	n := min(TipsPerReply, len(pool))
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		j := i + r.rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		lines[i] = TipBullet + pool[i]
	}
	return TipsHeader + strings.Join(lines, "\n") + TipsClosing
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// anyContains reports whether sub occurs inside any of words.
func anyContains(words []string, sub string) bool {
	for _, w := range words {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}
