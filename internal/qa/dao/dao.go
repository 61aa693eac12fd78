// Package dao stores questions waiting for an expert escalation
// and expert answers that could not be delivered.
package dao

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// DefaultPendingTTL is how long a question can be escalated after it was answered
const DefaultPendingTTL = 24 * time.Hour

// PendingStore maps an opaque token to the text of a question.
//
// Get does not consume the token, a replayed token resolves until it expires.
type PendingStore interface {
	Put(ctx context.Context, text string) (token string, err error)
	Get(ctx context.Context, token string) (text string, ok bool, err error)
	Close() error
}

// RelayBacklog keeps expert answers that never reached the asker
type RelayBacklog interface {
	AddFailedRelay(ctx context.Context, ticket *model.ExpertTicket) error
}

// newToken returns 128 random bits as 32 hex chars
func newToken() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
