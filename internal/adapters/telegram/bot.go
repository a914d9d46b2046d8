package telegram

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"travel_planner/internal/adapters/observability"
	"travel_planner/internal/domain"
)

// Sender is the part of the Bot API the handler needs.
type Sender interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (Message, error)
}

// Replier produces the answer to a free-text message.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) domain.Reply
}

// Bot turns one update into at most one reply.
type Bot struct {
	api  Sender
	conv Replier
}

func NewBot(api Sender, conv Replier) *Bot {
	return &Bot{api: api, conv: conv}
}

// Handle processes an update. Failures are logged and answered with ApologyText.
func (b *Bot) Handle(ctx context.Context, u Update) {
	msg := u.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		observability.ObserveUpdate("ignored")
		return
	}
	chatID := msg.Chat.ID
	l := log.With().Int("update_id", u.UpdateID).Int64("chat_id", chatID).Logger()

	defer func() {
		if r := recover(); r != nil {
			observability.ObserveUpdate("error")
			l.Error().Interface("panic", r).Msg("update handler panicked")
			b.apologize(ctx, chatID)
		}
	}()

	req, kind := b.route(ctx, chatID, strings.TrimSpace(msg.Text))
	observability.ObserveUpdate(kind)
	if req == nil {
		return
	}

	if _, err := b.api.SendMessage(ctx, *req); err != nil {
		observability.ObserveUpdate("error")
		l.Error().Err(err).Str("kind", kind).Msg("send reply failed")
		b.apologize(ctx, chatID)
		return
	}
	l.Info().Str("kind", kind).Msg("replied")
}

// route picks the reply for text. A nil request means nothing is sent.
func (b *Bot) route(ctx context.Context, chatID int64, text string) (*SendMessageRequest, string) {
	if strings.HasPrefix(text, "/") {
		switch command(text) {
		case "start":
			return &SendMessageRequest{ChatID: chatID, Text: WelcomeText, ReplyMarkup: MenuKeyboard()}, "command"
		case "help":
			return &SendMessageRequest{ChatID: chatID, Text: HelpText}, "command"
		default:
			return nil, "ignored"
		}
	}

	// Only the exact menu labels are answered statically. Typed "help" or
	// "about" is ordinary text and goes to the selector.
	switch text {
	case helpLabel:
		return &SendMessageRequest{ChatID: chatID, Text: HelpText}, "button"
	case aboutLabel:
		return &SendMessageRequest{ChatID: chatID, Text: AboutText}, "button"
	}

	rep := b.conv.Reply(ctx, chatID, text)
	observability.ObserveReply(string(rep.Branch))
	return &SendMessageRequest{ChatID: chatID, Text: rep.Text}, "text"
}

func (b *Bot) apologize(ctx context.Context, chatID int64) {
	if _, err := b.api.SendMessage(ctx, SendMessageRequest{ChatID: chatID, Text: ApologyText}); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send apology failed")
	}
}

// command extracts the lower-case command name from "/name@bot args".
func command(text string) string {
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

