package botui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"giftscout-backend/lib/scrapers/peek"
	"giftscout-backend/lib/textutil"
	"giftscout-backend/services/search"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	greeting = "Hi! I find gifts on sale for stars.\n\n" +
		"Commands:\n" +
		"• /search — search under a price ceiling (for example, 1100)\n" +
		"• /help — help"
	helpText        = "Send /search, then enter a number — the maximum price in stars (for example, 1100)."
	askCeiling      = "Enter the maximum price in stars (for example, 1100)."
	badCeiling      = "I need a number, for example: 1100. Try again."
	nothingFound    = "Nothing found under this ceiling yet. Try raising it or retry later."
	searchFailed    = "The search failed. Try again later."
	searchingNotice = "Searching for gifts up to %d⭐… this can take 5–20 seconds."
)

// PendingStore tracks which conversations are waiting for a numeric
// ceiling reply. Safe for concurrent update handlers; disarming is a
// single atomic step so one conversation can never dispatch the same
// search twice.
type PendingStore struct {
	mu      sync.Mutex
	waiting map[int64]struct{}
}

func NewPendingStore() *PendingStore {
	return &PendingStore{waiting: map[int64]struct{}{}}
}

func (s *PendingStore) Arm(chat int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waiting[chat] = struct{}{}
}

func (s *PendingStore) Armed(chat int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.waiting[chat]
	return ok
}

// TryDisarm removes the pending flag and reports whether this call was
// the one that removed it.
func (s *PendingStore) TryDisarm(chat int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.waiting[chat]
	delete(s.waiting, chat)
	return ok
}

// Selector runs one marketplace selection. Satisfied by
// services/search.Service.
type Selector interface {
	Select(ctx context.Context, req search.SelectionRequest) ([]peek.Candidate, error)
}

// Sender posts replies back to the chat. Satisfied by tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	sender   Sender
	selector Selector
	pending  *PendingStore
	limit    int
}

func New(sender Sender, selector Selector, limit int) *Bot {
	if limit <= 0 {
		limit = search.MaxLimit
	}
	return &Bot{
		sender:   sender,
		selector: selector,
		pending:  NewPendingStore(),
		limit:    limit,
	}
}

// Run consumes long-poll updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context, api *tgbotapi.BotAPI) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chat := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.reply(ctx, chat, greeting)
		case "help":
			b.reply(ctx, chat, helpText)
		case "search":
			b.pending.Arm(chat)
			b.reply(ctx, chat, askCeiling)
		}
		return
	}

	if !b.pending.Armed(chat) {
		return
	}

	ceiling, ok := textutil.ParseStars(strings.TrimSpace(msg.Text))
	if !ok || ceiling <= 0 {
		// the conversation stays armed until a usable number arrives
		b.reply(ctx, chat, badCeiling)
		return
	}
	if !b.pending.TryDisarm(chat) {
		return
	}

	b.reply(ctx, chat, fmt.Sprintf(searchingNotice, ceiling))

	results, err := b.selector.Select(ctx, search.SelectionRequest{
		MaxStars: ceiling,
		Limit:    b.limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "bot search failed", "chat", chat, "err", err)
		b.reply(ctx, chat, searchFailed)
		return
	}
	if len(results) == 0 {
		b.reply(ctx, chat, nothingFound)
		return
	}

	b.reply(ctx, chat, FormatResults(results))
}

// FormatResults renders candidates as an enumerated, linkable list.
func FormatResults(results []peek.Candidate) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf(
			"%d. %s\n   Price: %d⭐\n   Item: %s",
			i+1, r.Seller, r.PriceStars, r.URL,
		)
	}
	return strings.Join(lines, "\n\n")
}

func (b *Bot) reply(ctx context.Context, chat int64, text string) {
	out := tgbotapi.NewMessage(chat, text)
	out.DisableWebPagePreview = true
	_, err := b.sender.Send(out)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send reply", "chat", chat, "err", err)
	}
}
