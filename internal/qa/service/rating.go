package service

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-qa-bot/internal/library/webapi"
	"github.com/Laisky/laisky-qa-bot/internal/qa/codec"
)

// Rate saves the rating then replaces the rating buttons with a thank-you.
//
// The buttons stay in place when the rating could not be saved.
func (s *QA) Rate(ctx context.Context, cb *CallbackRequest, act codec.RatingAction) error {
	s.logger.Info("rate answer",
		zap.Int64("uid", cb.Sender.TgID),
		zap.Int("msg", cb.MessageID),
		zap.String("predictor", act.Predictor),
		zap.Int("rating", act.Rating))

	err := s.api.UpdateAnswerRating(ctx, act.AnswerID, act.Rating, cb.MessageID)
	switch {
	case errors.Is(err, webapi.ErrNotFound):
		s.logger.Warn("rated answer not found", zap.Int64("answer", act.AnswerID))
		return nil
	case err != nil:
		return errors.Wrap(err, "save rating")
	}

	if err = s.msg.Edit(ctx, cb.ChatID, cb.MessageID, thankedText(cb.Text)); err != nil {
		return errors.Wrap(err, "edit rated message")
	}

	return nil
}

// thankedText rebuilds the markdown of a rated answer from its plain text.
//
// Telegram returns the text without markup, so it is escaped again.
// A thank-you left by an earlier rating is replaced, not repeated.
func thankedText(plain string) string {
	plain = strings.TrimSuffix(plain, "\n\n"+phraseThanksPlain)
	return codec.EscapeMarkdownText(plain) + "\n\n" + phraseThanks
}
