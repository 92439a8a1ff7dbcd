package telegram

import (
	"context"
	"fmt"
	"strings"

	"franchise_ops_worker/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StorePinger runs one keep-alive round trip against the store.
type StorePinger interface {
	Ping(ctx context.Context) (*app.PingReport, error)
}

// RegisterBotCommands wires the ops chat commands. Only the configured ops
// chat gets answers; other chats are ignored.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	opsChatID int64,
	pinger StorePinger,
	jobNames []string,
	baseLogger *logrus.Entry,
) {
	cmdLogger := baseLogger.WithField("handler_group", "ops_commands")

	opsOnly := func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if c.Chat() == nil || c.Chat().ID != opsChatID {
				cmdLogger.WithField("text", c.Text()).Debug("Ignoring command from foreign chat")
				return nil
			}
			return next(c)
		}
	}

	b.Handle("/start", opsOnly(func(c telebot.Context) error {
		cmdLogger.WithField("command", "/start").Info("Processing /start command")
		return c.Send("Franchise ops worker is running. Use /help for the list of commands.")
	}))

	b.Handle("/help", opsOnly(func(c telebot.Context) error {
		cmdLogger.WithField("command", "/help").Info("Processing /help command")
		return c.Send(helpText(jobNames))
	}))

	b.Handle("/ping", opsOnly(func(c telebot.Context) error {
		cmdLogger.WithField("command", "/ping").Info("Processing /ping command")
		return c.Send(pingReply(ctx, pinger))
	}))
}

func helpText(jobNames []string) string {
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	sb.WriteString("/ping - check the store connection\n")
	sb.WriteString("/help - show this message\n")
	if len(jobNames) > 0 {
		sb.WriteString("\nScheduled jobs: ")
		sb.WriteString(strings.Join(jobNames, ", "))
	}
	return sb.String()
}

func pingReply(ctx context.Context, pinger StorePinger) string {
	report, err := pinger.Ping(ctx)
	if err != nil {
		return fmt.Sprintf("store unreachable: %v", err)
	}
	return fmt.Sprintf("store ok (%s)", report.String())
}
