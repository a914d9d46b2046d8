package telegram

const WelcomeText = `🌍 Welcome to Travel Planner Bot! 🌍

I can help you plan your next adventure! Here's what I can do:

• Recommend destinations based on your interests
• Suggest activities and attractions
• Provide travel tips and advice
• Help with accommodation ideas

Try asking me about:
- "I want to visit Paris"
- "Beach destinations"
- "Adventure activities"
- "Travel tips for Europe"`

const HelpText = `🤖 How to use Travel Planner Bot:

You can ask me about:
- Specific destinations (e.g., "Tell me about Tokyo")
- Types of vacations (e.g., "beach destinations")
- Activities (e.g., "adventure activities")
- Travel tips and advice
- Accommodation suggestions

Examples:
• "I want to go to a beach destination"
• "What can I do in Paris?"
• "Recommend some cultural destinations"
• "Travel tips for Asia"`

const AboutText = `ℹ️ Travel Planner Bot

I answer from a small hand-picked guide of destinations, vacation types and travel tips. Ask about a place or a kind of trip and I'll share what I know.`

const ApologyText = "Sorry, I encountered an error. Please try again."

const (
	helpLabel  = "Help"
	aboutLabel = "About"
)

// Menu labels. helpLabel and aboutLabel get static replies; the rest are ordinary text.
var menuRows = [][]string{
	{"Destinations", "Activities"},
	{"Accommodation", "Travel Tips"},
	{helpLabel, aboutLabel},
}

// MenuKeyboard is attached to the /start reply.
func MenuKeyboard() *ReplyKeyboardMarkup { return NewKeyboard(menuRows...) }
