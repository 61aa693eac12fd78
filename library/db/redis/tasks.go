package redis

import (
	"context"
	"encoding/json"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/google/uuid"
)

// relayFailedMaxLength is high enough that RPush never trims the backlog
const relayFailedMaxLength int64 = 1 << 40

// AddRelayFailedTask pushes an undelivered expert answer to the operator backlog
func (db *DB) AddRelayFailedTask(ctx context.Context, task *RelayFailedTask) (taskID string, err error) {
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = gutils.Clock.GetUTCNow()
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return task.TaskID, errors.Wrap(err, "marshal task")
	}

	if err = db.db.RPush(ctx, KeyTaskRelayFailed,
		[]any{string(payload)},
		db.db.WithMaxLength(relayFailedMaxLength),
	); err != nil {
		return task.TaskID, errors.Wrap(err, "rpush")
	}

	return task.TaskID, nil
}
