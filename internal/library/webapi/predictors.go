package webapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
)

// ListPredictors returns the names of every predictor
func (c *Client) ListPredictors(ctx context.Context) ([]string, error) {
	var resp struct {
		Predictors []string `json:"predictors"`
	}
	if err := c.do(ctx, http.MethodGet, "/predictors", nil, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "list predictors")
	}

	return resp.Predictors, nil
}

// Ask queries one predictor, returns nil if the predictor found nothing
func (c *Client) Ask(ctx context.Context, predictor string, q *model.Question) (*model.Answer, error) {
	query := url.Values{}
	query.Set("predictor", predictor)
	query.Set("query", q.Text)
	query.Set("msg_id", strconv.Itoa(q.MessageID))
	query.Set("user_id", strconv.FormatInt(q.AskerID, 10))
	query.Set("chat_id", strconv.FormatInt(q.ChatID, 10))

	var resp struct {
		Success bool          `json:"success"`
		Answer  *model.Answer `json:"answer"`
	}
	if err := c.do(ctx, http.MethodGet, "/search", query, nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "ask predictor %q", predictor)
	}

	if !resp.Success || resp.Answer == nil {
		return nil, nil
	}
	if resp.Answer.Predictor == "" {
		resp.Answer.Predictor = predictor
	}

	return resp.Answer, nil
}
