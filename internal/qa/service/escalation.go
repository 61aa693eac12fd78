package service

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-qa-bot/internal/library/webapi"
	"github.com/Laisky/laisky-qa-bot/internal/qa/codec"
	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// RequestExpert forwards a cached question to the expert chat and opens a ticket.
//
// The asker's button is removed only after the ticket exists,
// so any failure before that leaves the button usable.
func (s *QA) RequestExpert(ctx context.Context, cb *CallbackRequest, act codec.EscalationAction) error {
	text, ok, err := s.pending.Get(ctx, act.PendingToken)
	if err != nil {
		return errors.Wrap(err, "load pending question")
	}
	if !ok {
		s.logger.Debug("pending question expired", zap.Int64("chat", cb.ChatID), zap.Int("msg", cb.MessageID))
		return nil
	}

	fwd, err := s.msg.Send(ctx, &OutMessage{
		ChatID: s.expertChatID,
		Text:   text,
	})
	if err != nil {
		return errors.Wrap(err, "forward question to experts")
	}

	// thread the expert's answer to the asker's question, not to the prompt
	questionMsgID := cb.ReplyToMsgID
	if questionMsgID == 0 {
		questionMsgID = cb.MessageID
	}

	ticket, err := s.api.CreateExpertTicket(ctx, &model.ExpertTicket{
		QuestionText:         text,
		QuestionChatID:       cb.ChatID,
		QuestionMsgID:        questionMsgID,
		ExpertQuestionChatID: fwd.ChatID,
		ExpertQuestionMsgID:  fwd.MessageID,
		Status:               model.TicketRequested,
	})
	if err != nil {
		return errors.Wrap(err, "create expert ticket")
	}

	s.logger.Info("question escalated",
		zap.Int64("chat", ticket.QuestionChatID),
		zap.Int("question_msg", ticket.QuestionMsgID),
		zap.Int("expert_msg", ticket.ExpertQuestionMsgID))

	if err = s.msg.Edit(ctx, cb.ChatID, cb.MessageID, codec.EscapeMarkdownText(cb.Text)+"\n\n"+phraseExpertsOnIt); err != nil {
		return errors.Wrap(err, "edit escalation prompt")
	}

	return nil
}

// HandleExpertReply relays an expert's threaded reply to the original asker.
//
// Messages that are not replies to a question forwarded by the bot are ignored.
// If the relay fails the ticket stays answered and the answer goes to the backlog.
func (s *QA) HandleExpertReply(ctx context.Context, in *Incoming) error {
	if in.ChatID != s.expertChatID || in.ReplyToMsgID == 0 || !in.ReplyToFromBot {
		return nil
	}

	s.upsertUser(ctx, &in.Sender)

	replyChatID := in.ReplyToChatID
	if replyChatID == 0 {
		replyChatID = in.ChatID
	}
	answer := &model.ExpertTicket{
		ExpertQuestionChatID: replyChatID,
		ExpertQuestionMsgID:  in.ReplyToMsgID,
		ExpertAnswerText:     in.Text,
		ExpertAnswerMsgID:    in.MessageID,
		ExpertUserID:         in.Sender.TgID,
		Status:               model.TicketAnswered,
	}

	// a relayed ticket comes back unchanged, see webapi.Client.UpdateExpertTicket
	ticket, err := s.api.UpdateExpertTicket(ctx, answer)
	switch {
	case errors.Is(err, webapi.ErrNotFound):
		s.logger.Debug("reply is not a ticket answer", zap.Int("reply_to", in.ReplyToMsgID))
		return nil
	case err != nil:
		return errors.Wrap(err, "save expert answer")
	}

	if ticket.Status == "" {
		ticket.Status = model.TicketRequested
	}
	if ticket.Terminal() {
		s.logger.Info("ignore reply to a relayed ticket",
			zap.Int("expert_msg", ticket.ExpertQuestionMsgID),
			zap.Int("reply", in.MessageID))
		return nil
	}
	if ticket.Status != model.TicketAnswered {
		if err = ticket.Advance(model.TicketAnswered); err != nil {
			s.logger.Info("ignore reply to a closed ticket",
				zap.Error(err),
				zap.Int("expert_msg", ticket.ExpertQuestionMsgID))
			return nil
		}
	}
	if ticket.ExpertAnswerText == "" {
		ticket.ExpertAnswerText = answer.ExpertAnswerText
		ticket.ExpertAnswerMsgID = answer.ExpertAnswerMsgID
		ticket.ExpertUserID = answer.ExpertUserID
	}

	return s.relay(ctx, ticket)
}

func (s *QA) relay(ctx context.Context, ticket *model.ExpertTicket) error {
	if _, err := s.msg.Send(ctx, &OutMessage{
		ChatID:   ticket.QuestionChatID,
		Text:     fmt.Sprintf(phraseExpertSays, codec.EscapeMarkdownText(ticket.ExpertAnswerText)),
		ReplyTo:  ticket.QuestionMsgID,
		Markdown: true,
	}); err != nil {
		s.logger.Error("expert answer not delivered",
			zap.Error(err),
			zap.Int64("chat", ticket.QuestionChatID),
			zap.Int("question_msg", ticket.QuestionMsgID),
			zap.String("answer", ticket.ExpertAnswerText))
		if s.backlog != nil {
			if berr := s.backlog.AddFailedRelay(ctx, ticket); berr != nil {
				s.logger.Error("save undelivered expert answer", zap.Error(berr))
			}
		}

		return errors.Wrap(err, "relay expert answer")
	}

	if err := ticket.Advance(model.TicketRelayed); err != nil {
		return errors.WithStack(err)
	}
	if _, err := s.api.UpdateExpertTicket(ctx, ticket); err != nil {
		s.logger.Warn("report relayed ticket", zap.Error(err), zap.Int("expert_msg", ticket.ExpertQuestionMsgID))
	}

	return nil
}
