package webapi

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// expertQuestion is the wire format of model.ExpertTicket,
// the model itself carries no json tags.
type expertQuestion struct {
	QuestionText         string `json:"question_text,omitempty"`
	QuestionChatID       int64  `json:"question_chat_id,omitempty"`
	QuestionMsgID        int    `json:"question_msg_id,omitempty"`
	ExpertQuestionChatID int64  `json:"expert_question_chat_id"`
	ExpertQuestionMsgID  int    `json:"expert_question_msg_id"`
	ExpertAnswerText     string `json:"expert_answer_text,omitempty"`
	ExpertAnswerMsgID    int    `json:"expert_answer_msg_id,omitempty"`
	ExpertUserID         int64  `json:"expert_user_fk,omitempty"`
	Status               string `json:"status,omitempty"`
}

func toWire(ticket *model.ExpertTicket) (*expertQuestion, error) {
	wire := new(expertQuestion)
	if err := copier.Copy(wire, ticket); err != nil {
		return nil, errors.Wrap(err, "copy ticket")
	}
	wire.Status = string(ticket.Status)
	return wire, nil
}

func fromWire(wire *expertQuestion) (*model.ExpertTicket, error) {
	ticket := new(model.ExpertTicket)
	if err := copier.Copy(ticket, wire); err != nil {
		return nil, errors.Wrap(err, "copy expert question")
	}
	ticket.Status = model.TicketStatus(wire.Status)
	return ticket, nil
}

// CreateExpertTicket persists a ticket for a question forwarded to the experts
func (c *Client) CreateExpertTicket(ctx context.Context, ticket *model.ExpertTicket) (*model.ExpertTicket, error) {
	return c.sendTicket(ctx, http.MethodPost, "/expert_question/add", ticket)
}

// UpdateExpertTicket updates the ticket matched by its forwarded message,
// returns ErrNotFound if that message is not a ticket.
//
// The web API must not modify a relayed ticket: it answers with the stored
// ticket unchanged, which is how a late second reply is detected.
func (c *Client) UpdateExpertTicket(ctx context.Context, ticket *model.ExpertTicket) (*model.ExpertTicket, error) {
	return c.sendTicket(ctx, http.MethodPut, "/expert_question/update", ticket)
}

func (c *Client) sendTicket(ctx context.Context,
	method string,
	path string,
	ticket *model.ExpertTicket,
) (*model.ExpertTicket, error) {
	wire, err := toWire(ticket)
	if err != nil {
		return nil, err
	}

	resp := new(expertQuestion)
	if err = c.do(ctx, method, path, nil, wire, resp); err != nil {
		return nil, errors.Wrap(err, "send expert ticket")
	}

	return fromWire(resp)
}
