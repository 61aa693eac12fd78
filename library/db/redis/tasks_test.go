package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRelayFailedTask(t *testing.T) {
	ctx := context.Background()
	db, mr := newTestDB(t)

	taskID, err := db.AddRelayFailedTask(ctx, &RelayFailedTask{
		QuestionChatID:    42,
		QuestionMsgID:     10,
		ExpertAnswerText:  "Rayleigh scattering",
		ExpertAnswerMsgID: 900,
		ExpertUserID:      500,
	})
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	items, err := mr.List(KeyTaskRelayFailed)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := new(RelayFailedTask)
	require.NoError(t, json.Unmarshal([]byte(items[0]), got))
	require.Equal(t, taskID, got.TaskID)
	require.Equal(t, "Rayleigh scattering", got.ExpertAnswerText)
	require.Equal(t, int64(42), got.QuestionChatID)
	require.Equal(t, 10, got.QuestionMsgID)
	require.False(t, got.CreatedAt.IsZero())
}

func TestAddRelayFailedTaskKeepsEveryEntry(t *testing.T) {
	ctx := context.Background()
	db, mr := newTestDB(t)

	const n = 300
	for i := 0; i < n; i++ {
		_, err := db.AddRelayFailedTask(ctx, &RelayFailedTask{ExpertAnswerText: "a"})
		require.NoError(t, err)
	}

	items, err := mr.List(KeyTaskRelayFailed)
	require.NoError(t, err)
	require.Len(t, items, n)
}

func TestAddRelayFailedTaskConnectionError(t *testing.T) {
	db, mr := newTestDB(t)
	mr.Close()

	_, err := db.AddRelayFailedTask(context.Background(), &RelayFailedTask{ExpertAnswerText: "a"})
	require.Error(t, err)
}
