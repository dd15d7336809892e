package tgsession

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

type terminalAuth struct {
	in  *bufio.Reader
	out io.Writer
}

func (t terminalAuth) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t terminalAuth) Phone(_ context.Context) (string, error) {
	return t.prompt("Phone number (international format): ")
}

func (t terminalAuth) Password(_ context.Context) (string, error) {
	return t.prompt("2FA password (empty if none): ")
}

func (t terminalAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return t.prompt("Code from Telegram: ")
}

func (t terminalAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (t terminalAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, fmt.Errorf("signing up new accounts is not supported")
}

// Provision runs the interactive login flow and leaves a reusable
// session file behind. Prompts are read from `in` and written to `out`.
func (c *Client) Provision(ctx context.Context, in io.Reader, out io.Writer) error {
	flow := auth.NewFlow(
		terminalAuth{in: bufio.NewReader(in), out: out},
		auth.SendCodeOptions{},
	)

	return c.client.Run(ctx, func(ctx context.Context) error {
		err := c.client.Auth().IfNecessary(ctx, flow)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "session saved, you can start the service now")
		return nil
	})
}
