package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	tb "gopkg.in/telebot.v3"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

func TestIncomingFromMessage(t *testing.T) {
	me := &tb.User{ID: 1, Username: "FIChatbot", IsBot: true}
	sender := &tb.User{ID: 42, FirstName: "Ann", Username: "ann"}

	t.Run("private", func(t *testing.T) {
		in := incomingFromMessage(&tb.Message{
			ID:     5,
			Text:   "hello",
			Sender: sender,
			Chat:   &tb.Chat{ID: 42, Type: tb.ChatPrivate},
		}, me)

		require.Equal(t, &Incoming{
			ChatID:    42,
			MessageID: 5,
			Text:      "hello",
			Private:   true,
			Sender:    model.User{TgID: 42, FirstName: "Ann", Username: "ann"},
		}, in)
	})

	t.Run("reply to bot in group", func(t *testing.T) {
		in := incomingFromMessage(&tb.Message{
			ID:     6,
			Text:   "answer",
			Sender: sender,
			Chat:   &tb.Chat{ID: -100, Type: tb.ChatSuperGroup},
			ReplyTo: &tb.Message{
				ID:     3,
				Sender: me,
				Chat:   &tb.Chat{ID: -100, Type: tb.ChatSuperGroup},
			},
		}, me)

		require.False(t, in.Private)
		require.Equal(t, 3, in.ReplyToMsgID)
		require.Equal(t, int64(-100), in.ReplyToChatID)
		require.True(t, in.ReplyToFromBot)
	})

	t.Run("reply to someone else", func(t *testing.T) {
		in := incomingFromMessage(&tb.Message{
			ID:      7,
			Sender:  sender,
			Chat:    &tb.Chat{ID: -100, Type: tb.ChatGroup},
			ReplyTo: &tb.Message{ID: 3, Sender: &tb.User{ID: 99}},
		}, me)

		require.Equal(t, 3, in.ReplyToMsgID)
		require.False(t, in.ReplyToFromBot)
	})

	t.Run("unknown bot identity", func(t *testing.T) {
		in := incomingFromMessage(&tb.Message{
			ID:      8,
			Sender:  sender,
			Chat:    &tb.Chat{ID: -100, Type: tb.ChatGroup},
			ReplyTo: &tb.Message{ID: 3, Sender: me},
		}, nil)

		require.False(t, in.ReplyToFromBot)
	})
}

func TestCallbackFromTelebot(t *testing.T) {
	req := callbackFromTelebot(&tb.Callback{
		Data:   "x|abc",
		Sender: &tb.User{ID: 42, FirstName: "Ann"},
		Message: &tb.Message{
			ID:      11,
			Text:    "rate please",
			Chat:    &tb.Chat{ID: 42},
			ReplyTo: &tb.Message{ID: 10},
		},
	})

	require.Equal(t, &CallbackRequest{
		ChatID:       42,
		MessageID:    11,
		Text:         "rate please",
		ReplyToMsgID: 10,
		Data:         "x|abc",
		Sender:       model.User{TgID: 42, FirstName: "Ann"},
	}, req)
}

func TestInlineKeyboard(t *testing.T) {
	markup := inlineKeyboard([][]Button{
		{{Text: "⭐️1", Data: "r|1|1|C"}, {Text: "⭐️2", Data: "r|1|2|C"}},
		{{Text: "ask", Data: "x|t"}},
	})

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	require.Equal(t, "r|1|2|C", markup.InlineKeyboard[0][1].Data)
	require.Equal(t, "ask", markup.InlineKeyboard[1][0].Text)
}

func TestUserFromTelebotNil(t *testing.T) {
	require.Equal(t, model.User{}, userFromTelebot(nil))
}
