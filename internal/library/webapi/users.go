package webapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// UpsertUser registers the user or refreshes its last activity
func (c *Client) UpsertUser(ctx context.Context, user *model.User) error {
	if err := c.do(ctx, http.MethodPost, "/user/add", nil, user, nil); err != nil {
		return errors.Wrapf(err, "upsert user %d", user.TgID)
	}

	return nil
}

// UpdateAnswerRating saves the rating the user gave to an answer
func (c *Client) UpdateAnswerRating(ctx context.Context, answerID int64, rating int, msgID int) error {
	body := map[string]int{
		"rating": rating,
		"msg_id": msgID,
	}
	path := "/answer/" + strconv.FormatInt(answerID, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return errors.Wrapf(err, "update rating of answer %d", answerID)
	}

	return nil
}
