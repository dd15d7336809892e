package pricebot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/pricebot")

// Message is one upstream chat message: its text (or media caption) plus
// the labels of any attached inline buttons, row by row.
type Message struct {
	Text    string
	Buttons [][]string
}

// Session is the authenticated messaging account the provider talks
// through. Acquiring and keeping the session alive is the caller's
// problem, see lib/tgsession for the production implementation.
type Session interface {
	SendMessage(ctx context.Context, peer string, text string) error
	History(ctx context.Context, peer string, limit int) ([]Message, error)
}

const (
	DefaultBotUsername    = "PriceNFTbot"
	DefaultCommand        = "/start"
	DefaultSearchTemplate = "/search {username}"
	DefaultSettleDelay    = 5 * time.Second
	DefaultHistoryLimit   = 80
)

type Options struct {
	Session Session
	// upstream price bot, defaults to DefaultBotUsername
	BotUsername string
	// trigger for the full listing, defaults to DefaultCommand
	Command string
	// per-seller trigger, {username} is substituted, defaults to DefaultSearchTemplate
	SearchTemplate string
	// how long to wait for the upstream bot to reply before reading history
	SettleDelay  time.Duration
	HistoryLimit int
}

type Provider struct {
	session        Session
	bot            string
	command        string
	searchTemplate string
	settleDelay    time.Duration
	historyLimit   int
}

func NewProvider(opts Options) (*Provider, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("a session is required")
	}
	if opts.BotUsername == "" {
		opts.BotUsername = DefaultBotUsername
	}
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	if opts.SearchTemplate == "" {
		opts.SearchTemplate = DefaultSearchTemplate
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}

	return &Provider{
		session:        opts.Session,
		bot:            strings.TrimPrefix(opts.BotUsername, "@"),
		command:        opts.Command,
		searchTemplate: opts.SearchTemplate,
		settleDelay:    opts.SettleDelay,
		historyLimit:   opts.HistoryLimit,
	}, nil
}

// Gift is a listing extracted from the upstream bot's replies. The bot
// exposes no public deep link per listing, so URL points at the bot itself.
type Gift struct {
	Name       string `json:"name"`
	PriceStars int    `json:"priceStars"`
	Seller     string `json:"seller,omitempty"`
	URL        string `json:"url"`
}

func (p *Provider) settle(ctx context.Context) error {
	select {
	case <-time.After(p.settleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) link() string {
	return "https://t.me/" + p.bot
}

// FetchGifts triggers the upstream bot's listing command, waits for it to
// settle, then extracts every priced listing from the recent conversation
// history. Button-sourced prices take priority over in-text mentions.
// Results are unique by (name, price), first seen wins.
func (p *Provider) FetchGifts(ctx context.Context) ([]Gift, error) {
	ctx, span := tracer.Start(ctx, "provider:FetchGifts")
	defer span.End()

	err := p.session.SendMessage(ctx, p.bot, p.command)
	if err != nil {
		return nil, fmt.Errorf("trigger upstream bot: %w", err)
	}
	err = p.settle(ctx)
	if err != nil {
		return nil, err
	}

	history, err := p.session.History(ctx, p.bot, p.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("read upstream history: %w", err)
	}

	var out []Gift
	for _, msg := range history {
		gift, ok := ExtractGift(msg)
		if !ok {
			continue
		}
		gift.URL = p.link()
		out = append(out, gift)
	}

	return dedupeGifts(out), nil
}

type ScanRequest struct {
	Sellers []string
	// <= 0 means no ceiling
	MaxStars int
	MaxItems int
}

// ScanSellers triggers one upstream search per seller, strictly in
// sequence since interleaved requests inside a single conversation
// cannot be told apart. Only button-confirmed prices are kept.
func (p *Provider) ScanSellers(ctx context.Context, req ScanRequest) ([]Gift, error) {
	ctx, span := tracer.Start(ctx, "provider:ScanSellers")
	defer span.End()

	var out []Gift
	for _, raw := range req.Sellers {
		seller := strings.TrimSpace(raw)
		if seller == "" {
			continue
		}

		trigger := strings.ReplaceAll(
			p.searchTemplate,
			"{username}",
			strings.TrimPrefix(seller, "@"),
		)
		err := p.session.SendMessage(ctx, p.bot, trigger)
		if err != nil {
			return nil, fmt.Errorf("trigger search for %q: %w", seller, err)
		}
		err = p.settle(ctx)
		if err != nil {
			return nil, err
		}

		history, err := p.session.History(ctx, p.bot, p.historyLimit)
		if err != nil {
			return nil, fmt.Errorf("read upstream history: %w", err)
		}

		for _, msg := range history {
			price, ok := ExtractButtonPrice(msg)
			if !ok {
				continue
			}
			if req.MaxStars > 0 && price > req.MaxStars {
				continue
			}

			out = append(out, Gift{
				Name:       GiftName(msg.Text),
				PriceStars: price,
				Seller:     seller,
				URL:        p.link(),
			})
			if req.MaxItems > 0 && len(out) >= req.MaxItems {
				slog.DebugContext(ctx, "seller scan reached item cap", "seller", seller)
				return out, nil
			}
		}
	}

	return out, nil
}

func dedupeGifts(gifts []Gift) []Gift {
	seen := map[string]bool{}
	var uniq []Gift
	for _, g := range gifts {
		key := fmt.Sprintf("%s|%d", g.Name, g.PriceStars)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, g)
	}
	return uniq
}
