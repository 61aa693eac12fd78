// Package webapi is the client of the web service that owns predictors,
// users, answers and expert tickets.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-qa-bot/library/log"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 1024 * 1024
)

// Client talks to the web API over HTTP/JSON
type Client struct {
	base    *url.URL
	httpcli *http.Client
	logger  logSDK.Logger
}

// New creates a client for the web API at baseURL
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "parse web api url %q", baseURL)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("web api url %q must be absolute", baseURL)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpcli, err := gutils.NewHTTPClient(
		gutils.WithHTTPClientTimeout(timeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new http client")
	}

	return &Client{
		base:    base,
		httpcli: httpcli,
		logger:  log.Logger.Named("webapi"),
	}, nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpcli.CloseIdleConnections()
}

// do sends body as json and decodes a 2xx response into out.
//
// network failures wrap ErrConnection, 404 wraps ErrNotFound,
// 400 wraps ErrBadRequest, other non-2xx wrap ErrUnexpectedStatus.
func (c *Client) do(ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	out any,
) error {
	endpoint := *c.base
	endpoint.Path = c.base.Path + path
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpcli.Do(req)
	if err != nil {
		return errors.Wrapf(ErrConnection, "%s %s: %v", method, path, err)
	}
	defer gutils.CloseWithLog(resp.Body, c.logger)

	cnt, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errors.Wrapf(ErrConnection, "read %s %s: %v", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "%s %s", method, path)
	case resp.StatusCode == http.StatusBadRequest:
		return errors.Wrapf(ErrBadRequest, "%s %s: %s", method, path, strings.TrimSpace(string(cnt)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return errors.Wrapf(ErrUnexpectedStatus, "[%d] %s %s: %s",
			resp.StatusCode, method, path, strings.TrimSpace(string(cnt)))
	}

	if out == nil {
		return nil
	}
	if err = json.Unmarshal(cnt, out); err != nil {
		return errors.Wrapf(err, "decode response of %s %s", method, path)
	}

	c.logger.Debug("web api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))
	return nil
}
