package dao

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
	rdb "github.com/Laisky/laisky-qa-bot/library/db/redis"
	"github.com/Laisky/laisky-qa-bot/library/log"
)

// Redis is the PendingStore and RelayBacklog backed by redis
type Redis struct {
	db  *rdb.DB
	ttl time.Duration
}

// NewRedis creates a redis backed store, ttl <= 0 means DefaultPendingTTL
func NewRedis(db *rdb.DB, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}

	return &Redis{db: db, ttl: ttl}
}

// Put caches text under a fresh token
func (d *Redis) Put(ctx context.Context, text string) (string, error) {
	token := newToken()
	if err := d.db.SetPendingQuestion(ctx, token, text, d.ttl); err != nil {
		return "", errors.Wrap(err, "save pending question")
	}

	return token, nil
}

// Get resolves token to the cached text
func (d *Redis) Get(ctx context.Context, token string) (string, bool, error) {
	text, ok, err := d.db.GetPendingQuestion(ctx, token)
	if err != nil {
		return "", false, errors.Wrap(err, "load pending question")
	}

	return text, ok, nil
}

// AddFailedRelay pushes the ticket onto the relay_failed task list
func (d *Redis) AddFailedRelay(ctx context.Context, ticket *model.ExpertTicket) error {
	taskID, err := d.db.AddRelayFailedTask(ctx, &rdb.RelayFailedTask{
		QuestionChatID:    ticket.QuestionChatID,
		QuestionMsgID:     ticket.QuestionMsgID,
		ExpertAnswerText:  ticket.ExpertAnswerText,
		ExpertAnswerMsgID: ticket.ExpertAnswerMsgID,
		ExpertUserID:      ticket.ExpertUserID,
	})
	if err != nil {
		return errors.Wrap(err, "add relay failed task")
	}

	log.Logger.Info("saved undelivered expert answer", zap.String("task_id", taskID))
	return nil
}

// Close closes the redis connection
func (d *Redis) Close() error {
	return d.db.Close()
}
