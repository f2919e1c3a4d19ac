// Package telegram is the Telegram surface of the bot: it receives updates
// via long polling and renders flow replies as messages with inline keyboards.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/rigbot/internal/flow"
)

// Channel connects the conversation tracker to a Telegram bot.
type Channel struct {
	bot     *telego.Bot
	tracker *flow.Tracker
}

// NewChannel creates the channel and verifies the token with getMe.
func NewChannel(token string, tracker *flow.Tracker) (*Channel, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Channel{bot: bot, tracker: tracker}, nil
}

// Run registers the command menu and consumes updates until the context is
// cancelled. Updates are handled sequentially; per-user flows are short and
// ordering matters more than throughput here.
func (c *Channel) Run(ctx context.Context) error {
	me, err := c.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot identity: %w", err)
	}
	slog.Info("telegram channel started", "username", me.Username)

	if err := c.setMenuCommands(ctx); err != nil {
		slog.Warn("set menu commands failed", "error", err)
	}

	updates, err := c.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handleUpdate(ctx, update)
		}
	}
}

func (c *Channel) setMenuCommands(ctx context.Context) error {
	return c.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: []telego.BotCommand{
			{Command: "start", Description: "Open the main menu"},
		},
	})
}

func (c *Channel) handleUpdate(ctx context.Context, update telego.Update) {
	switch {
	case update.CallbackQuery != nil:
		c.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		c.handleMessage(ctx, update.Message)
	}
}

func (c *Channel) handleMessage(ctx context.Context, msg *telego.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	var (
		reply flow.Reply
		err   error
	)
	if cmd, _, _ := strings.Cut(text, " "); cmd == "/start" || strings.HasPrefix(cmd, "/start@") {
		reply, err = c.tracker.Start(ctx, userID)
	} else {
		reply, err = c.tracker.HandleText(ctx, userID, text)
	}
	if err != nil {
		slog.Error("handle message failed", "user_id", userID, "error", err)
		reply = errorReply()
	}

	c.send(ctx, chatID, 0, reply)
}

func (c *Channel) handleCallback(ctx context.Context, query *telego.CallbackQuery) {
	userID := query.From.ID

	// Always acknowledge, or the client keeps its spinner.
	defer func() {
		err := c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
		})
		if err != nil {
			slog.Debug("answer callback failed", "user_id", userID, "error", err)
		}
	}()

	if query.Message == nil {
		return
	}
	chatID := query.Message.GetChat().ID
	messageID := query.Message.GetMessageID()

	reply, err := c.tracker.HandleCallback(ctx, userID, query.Data)
	if err != nil {
		slog.Error("handle callback failed", "user_id", userID, "data", query.Data, "error", err)
		reply = errorReply()
	}

	c.send(ctx, chatID, messageID, reply)
}

// send renders a flow reply. Edit replies rewrite the triggering message in
// place; everything else goes out as a fresh message. A failed edit (e.g. the
// message is too old or unchanged) falls back to sending.
func (c *Channel) send(ctx context.Context, chatID int64, messageID int, reply flow.Reply) {
	if reply.Empty() {
		return
	}
	keyboard := renderKeyboard(reply.Rows)

	if reply.Edit && messageID != 0 {
		edit := tu.EditMessageText(tu.ID(chatID), messageID, reply.Text)
		edit.ReplyMarkup = keyboard
		if _, err := c.bot.EditMessageText(ctx, edit); err == nil {
			return
		}
	}

	msg := tu.Message(tu.ID(chatID), reply.Text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := c.bot.SendMessage(ctx, msg); err != nil {
		slog.Error("send message failed", "chat_id", chatID, "error", err)
	}
}

func renderKeyboard(rows [][]flow.Button) *telego.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]telego.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			btn := tu.InlineKeyboardButton(b.Label)
			if b.URL != "" {
				btn = btn.WithURL(b.URL)
			} else {
				btn = btn.WithCallbackData(b.Data)
			}
			row = append(row, btn)
		}
		kb = append(kb, row)
	}
	return &telego.InlineKeyboardMarkup{InlineKeyboard: kb}
}

func errorReply() flow.Reply {
	return flow.Reply{Text: "⚠️ Something went wrong. Please try again."}
}
