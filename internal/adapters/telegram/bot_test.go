package telegram_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"travel_planner/internal/adapters/telegram"
	"travel_planner/internal/domain"
)

// ---- fakes ----

type fakeSender struct {
	mu      sync.Mutex
	sent    []telegram.SendMessageRequest
	failFor map[string]bool // text -> fail
}

func (f *fakeSender) SendMessage(ctx context.Context, req telegram.SendMessageRequest) (telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.failFor[req.Text] {
		return telegram.Message{}, errors.New("network down")
	}
	return telegram.Message{MessageID: len(f.sent), Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Text)
	}
	return out
}

type fakeReplier struct {
	mu    sync.Mutex
	got   []string
	panic bool
}

func (f *fakeReplier) Reply(ctx context.Context, chatID int64, text string) domain.Reply {
	if f.panic {
		panic("boom")
	}
	f.mu.Lock()
	f.got = append(f.got, text)
	f.mu.Unlock()
	return domain.Reply{Branch: domain.BranchTips, Text: "reply to " + text}
}

func textUpdate(id int, chat int64, text string) telegram.Update {
	return telegram.Update{UpdateID: id, Message: &telegram.Message{MessageID: id, Chat: telegram.Chat{ID: chat}, Text: text}}
}

// ---- tests ----

func TestBot_StartSendsWelcomeWithKeyboard(t *testing.T) {
	s := &fakeSender{}
	b := telegram.NewBot(s, &fakeReplier{})

	b.Handle(context.Background(), textUpdate(1, 10, "/start"))

	if len(s.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(s.sent))
	}
	m := s.sent[0]
	if m.ChatID != 10 || m.Text != telegram.WelcomeText || m.ReplyMarkup == nil {
		t.Fatalf("unexpected welcome: %+v", m)
	}
	if got := m.ReplyMarkup.Keyboard[2][0].Text; got != "Help" {
		t.Fatalf("unexpected keyboard row: %q", got)
	}
}

func TestBot_Commands(t *testing.T) {
	s := &fakeSender{}
	r := &fakeReplier{}
	b := telegram.NewBot(s, r)
	ctx := context.Background()

	b.Handle(ctx, textUpdate(1, 10, "/help"))
	b.Handle(ctx, textUpdate(2, 10, "/HELP@travel_bot"))
	b.Handle(ctx, textUpdate(3, 10, "/unknown paris"))

	got := s.texts()
	if len(got) != 2 || got[0] != telegram.HelpText || got[1] != telegram.HelpText {
		t.Fatalf("unexpected replies: %q", got)
	}
	if len(r.got) != 0 {
		t.Fatalf("commands must not reach the replier: %q", r.got)
	}
}

func TestBot_MenuButtons(t *testing.T) {
	s := &fakeSender{}
	r := &fakeReplier{}
	b := telegram.NewBot(s, r)
	ctx := context.Background()

	b.Handle(ctx, textUpdate(1, 10, "Help"))
	b.Handle(ctx, textUpdate(2, 10, "About"))
	b.Handle(ctx, textUpdate(3, 10, "Travel Tips"))

	got := s.texts()
	if got[0] != telegram.HelpText || got[1] != telegram.AboutText {
		t.Fatalf("unexpected button replies: %q", got)
	}
	if got[2] != "reply to Travel Tips" || len(r.got) != 1 {
		t.Fatalf("expected Travel Tips to reach the replier, got %q", got[2])
	}
}

func TestBot_TypedHelpIsOrdinaryText(t *testing.T) {
	s := &fakeSender{}
	r := &fakeReplier{}
	b := telegram.NewBot(s, r)
	ctx := context.Background()

	b.Handle(ctx, textUpdate(1, 10, "help"))
	b.Handle(ctx, textUpdate(2, 10, "ABOUT"))

	if len(r.got) != 2 || r.got[0] != "help" || r.got[1] != "ABOUT" {
		t.Fatalf("expected typed text to reach the replier, got %q", r.got)
	}
	got := s.texts()
	if got[0] != "reply to help" || got[1] != "reply to ABOUT" {
		t.Fatalf("unexpected replies: %q", got)
	}
}

func TestBot_TextGoesToReplier(t *testing.T) {
	s := &fakeSender{}
	r := &fakeReplier{}
	b := telegram.NewBot(s, r)

	b.Handle(context.Background(), textUpdate(1, 99, "  I want to visit Paris "))

	if len(r.got) != 1 || r.got[0] != "I want to visit Paris" {
		t.Fatalf("unexpected replier input: %q", r.got)
	}
	if len(s.sent) != 1 || s.sent[0].ChatID != 99 || s.sent[0].Text != "reply to I want to visit Paris" {
		t.Fatalf("unexpected sent: %+v", s.sent)
	}
}

func TestBot_IgnoresEmptyAndNonMessageUpdates(t *testing.T) {
	s := &fakeSender{}
	b := telegram.NewBot(s, &fakeReplier{})
	ctx := context.Background()

	b.Handle(ctx, telegram.Update{UpdateID: 1})
	b.Handle(ctx, textUpdate(2, 1, "   "))

	if len(s.sent) != 0 {
		t.Fatalf("expected nothing sent, got %+v", s.sent)
	}
}

func TestBot_SendFailureTriggersApology(t *testing.T) {
	s := &fakeSender{failFor: map[string]bool{"reply to hello": true}}
	b := telegram.NewBot(s, &fakeReplier{})

	b.Handle(context.Background(), textUpdate(1, 5, "hello"))

	got := s.texts()
	if len(got) != 2 || got[1] != telegram.ApologyText {
		t.Fatalf("expected apology after failed send, got %q", got)
	}
}

func TestBot_PanicTriggersApology(t *testing.T) {
	s := &fakeSender{}
	b := telegram.NewBot(s, &fakeReplier{panic: true})

	b.Handle(context.Background(), textUpdate(1, 5, "hello"))

	got := s.texts()
	if len(got) != 1 || got[0] != telegram.ApologyText {
		t.Fatalf("expected apology after panic, got %q", got)
	}
}
