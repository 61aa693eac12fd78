// Package service relays questions to the predictors, collects ratings
// and escalates unanswered questions to human experts.
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-qa-bot/internal/qa/codec"
	"github.com/Laisky/laisky-qa-bot/internal/qa/dao"
	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
	"github.com/Laisky/laisky-qa-bot/library/log"
)

// Options configures QA
type Options struct {
	// ExpertChatID is the chat where questions are forwarded to the experts
	ExpertChatID int64
	// BotUsername is used to detect mentions in group chats
	BotUsername string
	// Debug prefixes every answer with the predictor's name
	Debug bool
	// PredictorTimeout bounds every predictor call
	PredictorTimeout time.Duration
	// Pause runs between two delivered answers, random 2-4s by default
	Pause func(ctx context.Context)
}

// QA holds everything one dispatch cycle, rating or escalation needs
type QA struct {
	api        API
	msg        Messenger
	pending    dao.PendingStore
	backlog    dao.RelayBacklog
	registry   *PredictorRegistry
	dispatcher *Dispatcher

	expertChatID int64
	botUsername  string
	debug        bool
	pause        func(ctx context.Context)
	logger       logSDK.Logger
}

// New creates QA
func New(api API,
	msg Messenger,
	pending dao.PendingStore,
	backlog dao.RelayBacklog,
	registry *PredictorRegistry,
	opt Options,
) (*QA, error) {
	switch {
	case api == nil:
		return nil, errors.New("web api is required")
	case msg == nil:
		return nil, errors.New("messenger is required")
	case pending == nil:
		return nil, errors.New("pending store is required")
	case registry == nil:
		return nil, errors.New("predictor registry is required")
	case opt.ExpertChatID == 0:
		return nil, errors.New("expert chat id is required")
	}

	if opt.Pause == nil {
		opt.Pause = typingPause
	}

	return &QA{
		api:          api,
		msg:          msg,
		pending:      pending,
		backlog:      backlog,
		registry:     registry,
		dispatcher:   NewDispatcher(api, registry, opt.PredictorTimeout),
		expertChatID: opt.ExpertChatID,
		botUsername:  strings.TrimPrefix(opt.BotUsername, "@"),
		debug:        opt.Debug,
		pause:        opt.Pause,
		logger:       log.Logger.Named("qa"),
	}, nil
}

// Registry returns the loaded predictors
func (s *QA) Registry() *PredictorRegistry {
	return s.registry
}

// typingPause sleeps 2-4s so the asker sees the bot keep typing
func typingPause(ctx context.Context) {
	d := time.Duration(2+rand.IntN(3)) * time.Second
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// HandleText routes an incoming text message
func (s *QA) HandleText(ctx context.Context, in *Incoming) {
	if in.ChatID == s.expertChatID {
		if err := s.HandleExpertReply(ctx, in); err != nil {
			s.logger.Error("handle expert reply", zap.Error(err),
				zap.Int("msg", in.MessageID),
				zap.Int64("expert", in.Sender.TgID))
		}
		return
	}

	text, ok := s.questionText(in)
	if !ok {
		return
	}

	s.upsertUser(ctx, &in.Sender)
	s.HandleQuestion(ctx, &model.Question{
		Text:      text,
		AskerID:   in.Sender.TgID,
		ChatID:    in.ChatID,
		MessageID: in.MessageID,
	})
}

// questionText extracts the question, group chats must mention the bot.
// Bot commands are not questions.
func (s *QA) questionText(in *Incoming) (string, bool) {
	text := strings.TrimSpace(in.Text)
	if !in.Private {
		mention := "@" + s.botUsername
		if s.botUsername == "" || !strings.Contains(text, mention) {
			return "", false
		}
		text = strings.TrimSpace(strings.ReplaceAll(text, mention, ""))
	}

	if strings.HasPrefix(text, "/") {
		return "", false
	}

	return text, text != ""
}

func (s *QA) upsertUser(ctx context.Context, user *model.User) {
	if err := s.api.UpsertUser(ctx, user); err != nil {
		s.logger.Error("upsert user", zap.Error(err), zap.Int64("uid", user.TgID))
	}
}

// HandleQuestion runs one dispatch cycle: answers are delivered as they
// arrive, then the question is cached and the escalation button is offered.
func (s *QA) HandleQuestion(ctx context.Context, q *model.Question) {
	logger := s.logger.With(zap.Int64("chat", q.ChatID), zap.Int("msg", q.MessageID))
	logger.Info("processing question", zap.String("question", q.Text))

	s.typing(ctx, q.ChatID)
	delivered := 0
	for ans := range s.dispatcher.Dispatch(ctx, q) {
		if err := s.sendAnswer(ctx, q, ans); err != nil {
			logger.Error("send answer", zap.Error(err), zap.String("predictor", ans.Predictor))
		} else {
			delivered++
		}

		s.typing(ctx, q.ChatID)
		s.pause(ctx)
	}
	s.typing(ctx, q.ChatID)

	if err := s.offerEscalation(ctx, q); err != nil {
		logger.Error("offer escalation", zap.Error(err))
		return
	}

	logger.Info("question processed", zap.Int("answers", delivered))
}

func (s *QA) typing(ctx context.Context, chatID int64) {
	if err := s.msg.Typing(ctx, chatID); err != nil {
		s.logger.Debug("set typing", zap.Error(err), zap.Int64("chat", chatID))
	}
}

func (s *QA) sendAnswer(ctx context.Context, q *model.Question, ans *model.Answer) error {
	text := codec.EscapeMarkdownText(ans.Text)
	if s.debug {
		text = fmt.Sprintf(phrasePredictorTpl, codec.EscapeMarkdown(ans.Predictor), text)
	}

	out := &OutMessage{
		ChatID:   q.ChatID,
		Text:     text,
		Markdown: true,
	}
	if ans.ID != nil {
		row, err := ratingButtons(*ans.ID, ans.Predictor)
		if err != nil {
			s.logger.Warn("answer cannot be rated", zap.Error(err), zap.String("predictor", ans.Predictor))
		} else {
			out.Buttons = [][]Button{row}
		}
	}

	if _, err := s.msg.Send(ctx, out); err != nil {
		return errors.Wrap(err, "send message")
	}

	return nil
}

// ratingButtons builds the one to five stars row
func ratingButtons(answerID int64, predictor string) ([]Button, error) {
	row := make([]Button, 0, model.MaxRating)
	for rating := model.MinRating; rating <= model.MaxRating; rating++ {
		data, err := codec.Encode(codec.RatingAction{
			AnswerID:  answerID,
			Rating:    rating,
			Predictor: predictor,
		})
		if err != nil {
			return nil, errors.Wrap(err, "encode rating action")
		}

		row = append(row, Button{
			Text: "⭐️" + strconv.Itoa(rating),
			Data: data,
		})
	}

	return row, nil
}

func (s *QA) offerEscalation(ctx context.Context, q *model.Question) error {
	token, err := s.pending.Put(ctx, q.Text)
	if err != nil {
		return errors.Wrap(err, "cache question")
	}

	data, err := codec.Encode(codec.EscalationAction{PendingToken: token})
	if err != nil {
		return errors.Wrap(err, "encode escalation action")
	}

	if _, err = s.msg.Send(ctx, &OutMessage{
		ChatID:   q.ChatID,
		Text:     phraseRateAnswers,
		ReplyTo:  q.MessageID,
		Markdown: true,
		Buttons:  [][]Button{{{Text: phraseAskExperts, Data: data}}},
	}); err != nil {
		return errors.Wrap(err, "send escalation prompt")
	}

	return nil
}

// HandleCallback routes a pressed button, unknown payloads are ignored
func (s *QA) HandleCallback(ctx context.Context, cb *CallbackRequest) {
	act, err := codec.Decode(cb.Data)
	if err != nil {
		s.logger.Debug("ignore callback", zap.Error(err), zap.String("data", cb.Data))
		return
	}

	logger := s.logger.With(
		zap.Int64("chat", cb.ChatID),
		zap.Int("msg", cb.MessageID),
		zap.Int64("uid", cb.Sender.TgID),
	)
	switch a := act.(type) {
	case codec.RatingAction:
		if err = s.Rate(ctx, cb, a); err != nil {
			logger.Error("rate answer", zap.Error(err), zap.Int64("answer", a.AnswerID))
		}
	case codec.EscalationAction:
		if err = s.RequestExpert(ctx, cb, a); err != nil {
			logger.Error("request expert", zap.Error(err))
		}
	}
}
