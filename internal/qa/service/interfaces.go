package service

import (
	"context"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// API is the part of the web API the bot relies on,
// implemented by webapi.Client.
type API interface {
	ListPredictors(ctx context.Context) ([]string, error)
	Ask(ctx context.Context, predictor string, q *model.Question) (*model.Answer, error)
	UpsertUser(ctx context.Context, user *model.User) error
	UpdateAnswerRating(ctx context.Context, answerID int64, rating int, msgID int) error
	CreateExpertTicket(ctx context.Context, ticket *model.ExpertTicket) (*model.ExpertTicket, error)
	UpdateExpertTicket(ctx context.Context, ticket *model.ExpertTicket) (*model.ExpertTicket, error)
}

// Button is one inline keyboard button
type Button struct {
	Text string
	Data string
}

// OutMessage is a message to be sent to a chat
type OutMessage struct {
	ChatID int64
	Text   string
	// ReplyTo is the message id to thread the reply to, 0 for none
	ReplyTo  int
	Markdown bool
	Buttons  [][]Button
}

// SentMessage identifies a delivered message
type SentMessage struct {
	ChatID    int64
	MessageID int
}

// Messenger is the outbound side of the chat transport
type Messenger interface {
	Send(ctx context.Context, msg *OutMessage) (*SentMessage, error)
	// Edit replaces the text of a message in markdown and drops its buttons
	Edit(ctx context.Context, chatID int64, msgID int, text string) error
	// Typing shows the typing indicator in chat
	Typing(ctx context.Context, chatID int64) error
}

// Incoming is a text message received by the bot
type Incoming struct {
	ChatID    int64
	MessageID int
	Text      string
	Private   bool
	Sender    model.User

	// ReplyToMsgID is the message this one replies to, 0 if none
	ReplyToMsgID   int
	ReplyToChatID  int64
	ReplyToFromBot bool
}

// CallbackRequest is a pressed inline button
type CallbackRequest struct {
	ChatID    int64
	MessageID int
	// Text is the plain text of the message carrying the button
	Text string
	// ReplyToMsgID is the message the button's message replies to, 0 if none
	ReplyToMsgID int
	Data         string
	Sender       model.User
}
