package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	tb "gopkg.in/telebot.v3"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
	"github.com/Laisky/laisky-qa-bot/library/log"
)

// NewBot creates a long polling telegram bot
func NewBot(token, api string, pollTimeout time.Duration) (*tb.Bot, error) {
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}

	bot, err := tb.NewBot(tb.Settings{
		Token: token,
		URL:   api,
		Poller: &tb.LongPoller{
			Timeout: pollTimeout,
		},
		OnError: func(err error, c tb.Context) {
			log.Logger.Error("telegram handler", zap.Error(err))
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "new telegram bot")
	}

	return bot, nil
}

// Telegram implements Messenger with telebot
type Telegram struct {
	bot *tb.Bot
}

// NewTelegram wraps bot as a Messenger
func NewTelegram(bot *tb.Bot) *Telegram {
	return &Telegram{bot: bot}
}

// Send sends msg, markdown and buttons are optional
func (t *Telegram) Send(_ context.Context, msg *OutMessage) (*SentMessage, error) {
	opt := &tb.SendOptions{}
	if msg.Markdown {
		opt.ParseMode = tb.ModeMarkdown
	}
	if msg.ReplyTo != 0 {
		opt.ReplyTo = &tb.Message{ID: msg.ReplyTo}
	}
	if len(msg.Buttons) != 0 {
		opt.ReplyMarkup = inlineKeyboard(msg.Buttons)
	}

	sent, err := t.bot.Send(tb.ChatID(msg.ChatID), msg.Text, opt)
	if err != nil {
		return nil, errors.Wrapf(err, "send to chat %d", msg.ChatID)
	}

	out := &SentMessage{ChatID: msg.ChatID, MessageID: sent.ID}
	if sent.Chat != nil {
		out.ChatID = sent.Chat.ID
	}

	return out, nil
}

// Edit replaces the text and removes the inline keyboard
func (t *Telegram) Edit(_ context.Context, chatID int64, msgID int, text string) error {
	_, err := t.bot.Edit(
		&tb.StoredMessage{MessageID: strconv.Itoa(msgID), ChatID: chatID},
		text,
		&tb.SendOptions{ParseMode: tb.ModeMarkdown},
	)
	if err != nil && !errors.Is(err, tb.ErrSameMessageContent) {
		return errors.Wrapf(err, "edit message %d in chat %d", msgID, chatID)
	}

	return nil
}

// Typing shows the typing indicator
func (t *Telegram) Typing(_ context.Context, chatID int64) error {
	return errors.Wrap(t.bot.Notify(tb.ChatID(chatID), tb.Typing), "notify typing")
}

func inlineKeyboard(rows [][]Button) *tb.ReplyMarkup {
	keyboard := make([][]tb.InlineButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tb.InlineButton, 0, len(row))
		for _, btn := range row {
			btns = append(btns, tb.InlineButton{Text: btn.Text, Data: btn.Data})
		}
		keyboard = append(keyboard, btns)
	}

	return &tb.ReplyMarkup{InlineKeyboard: keyboard}
}

// RegisterHandlers routes telegram updates to qa
func RegisterHandlers(ctx context.Context, bot *tb.Bot, qa *QA) {
	bot.Handle(tb.OnText, func(c tb.Context) error {
		m := c.Message()
		if m == nil || m.Sender == nil || m.Chat == nil {
			return nil
		}

		log.Logger.Debug("got message",
			zap.Int64("chat", m.Chat.ID),
			zap.Int64("sender", m.Sender.ID))
		qa.HandleText(ctx, incomingFromMessage(m, bot.Me))
		return nil
	})

	bot.Handle(tb.OnCallback, func(c tb.Context) error {
		cb := c.Callback()
		if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
			return nil
		}

		qa.HandleCallback(ctx, callbackFromTelebot(cb))
		if err := c.Respond(); err != nil {
			log.Logger.Debug("respond callback", zap.Error(err))
		}
		return nil
	})
}

func userFromTelebot(u *tb.User) model.User {
	if u == nil {
		return model.User{}
	}

	return model.User{
		TgID:      u.ID,
		FirstName: u.FirstName,
		Username:  u.Username,
	}
}

func incomingFromMessage(m *tb.Message, me *tb.User) *Incoming {
	in := &Incoming{
		ChatID:    m.Chat.ID,
		MessageID: m.ID,
		Text:      m.Text,
		Private:   m.Private(),
		Sender:    userFromTelebot(m.Sender),
	}

	if m.ReplyTo != nil {
		in.ReplyToMsgID = m.ReplyTo.ID
		if m.ReplyTo.Chat != nil {
			in.ReplyToChatID = m.ReplyTo.Chat.ID
		}
		in.ReplyToFromBot = me != nil &&
			m.ReplyTo.Sender != nil &&
			m.ReplyTo.Sender.ID == me.ID
	}

	return in
}

func callbackFromTelebot(cb *tb.Callback) *CallbackRequest {
	req := &CallbackRequest{
		ChatID:    cb.Message.Chat.ID,
		MessageID: cb.Message.ID,
		Text:      cb.Message.Text,
		Data:      cb.Data,
		Sender:    userFromTelebot(cb.Sender),
	}
	if cb.Message.ReplyTo != nil {
		req.ReplyToMsgID = cb.Message.ReplyTo.ID
	}

	return req
}
