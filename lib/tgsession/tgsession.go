package tgsession

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"giftscout-backend/lib/scrapers/pricebot"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
)

// ErrNotAuthorized means no usable session was found on disk; run the
// interactive provisioning flow first (giftscout-cli session).
var ErrNotAuthorized = errors.New("telegram session is not authorized")

type Options struct {
	ApiID       int
	ApiHash     string
	SessionFile string
}

// Client implements pricebot.Session over an MTProto user account.
// Connect must be called before any other method.
type Client struct {
	client *telegram.Client
}

var _ pricebot.Session = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	if opts.ApiID == 0 || opts.ApiHash == "" {
		return nil, fmt.Errorf("api id and api hash are required")
	}
	if opts.SessionFile == "" {
		return nil, fmt.Errorf("a session file path is required")
	}

	return &Client{
		client: telegram.NewClient(opts.ApiID, opts.ApiHash, telegram.Options{
			SessionStorage: &session.FileStorage{Path: opts.SessionFile},
		}),
	}, nil
}

// Connect dials Telegram in the background and blocks until the
// connection is usable. The returned stop function tears it down.
func (c *Client) Connect(ctx context.Context) (func() error, error) {
	runCtx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	ready := make(chan struct{})

	go func() {
		runErr <- c.client.Run(runCtx, func(ctx context.Context) error {
			status, err := c.client.Auth().Status(ctx)
			if err != nil {
				return err
			}
			if !status.Authorized {
				return ErrNotAuthorized
			}
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
	case err := <-runErr:
		cancel()
		if err == nil {
			err = fmt.Errorf("telegram client stopped unexpectedly")
		}
		return nil, err
	case <-ctx.Done():
		cancel()
		<-runErr
		return nil, ctx.Err()
	}

	stop := func() error {
		cancel()
		err := <-runErr
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return stop, nil
}

func (c *Client) resolvePeer(ctx context.Context, username string) (tg.InputPeerClass, error) {
	username = strings.TrimPrefix(username, "@")

	resolved, err := c.client.API().ContactsResolveUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", username, err)
	}
	for _, u := range resolved.Users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		if strings.EqualFold(user.Username, username) {
			return &tg.InputPeerUser{
				UserID:     user.ID,
				AccessHash: user.AccessHash,
			}, nil
		}
	}
	return nil, fmt.Errorf("no user found for %q", username)
}

func (c *Client) SendMessage(ctx context.Context, peer string, text string) error {
	sender := message.NewSender(c.client.API())
	_, err := sender.Resolve(peer).NoWebpage().Text(ctx, text)
	return err
}

func (c *Client) History(ctx context.Context, peer string, limit int) ([]pricebot.Message, error) {
	input, err := c.resolvePeer(ctx, peer)
	if err != nil {
		return nil, err
	}

	res, err := c.client.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  input,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	container, ok := res.(interface{ GetMessages() []tg.MessageClass })
	if !ok {
		return nil, fmt.Errorf("unexpected history response %T", res)
	}

	var out []pricebot.Message
	for _, m := range container.GetMessages() {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}

		var buttons [][]string
		if markup, ok := msg.GetReplyMarkup(); ok {
			if inline, ok := markup.(*tg.ReplyInlineMarkup); ok {
				for _, row := range inline.Rows {
					var labels []string
					for _, b := range row.Buttons {
						labels = append(labels, b.GetText())
					}
					buttons = append(buttons, labels)
				}
			}
		}

		out = append(out, pricebot.Message{
			Text:    msg.Message,
			Buttons: buttons,
		})
	}
	return out, nil
}
