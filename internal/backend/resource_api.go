package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Fetch GETs a resource path and returns the raw body for normalization.
func (c *Client) Fetch(ctx context.Context, token, path string, query url.Values) ([]byte, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Token: token})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Send issues a mutating call with a JSON body. A non-empty idempotencyKey
// allows the call to be retried after a connection failure.
func (c *Client) Send(ctx context.Context, method, token, path string, body any, idempotencyKey string) ([]byte, error) {
	resp, err := c.Do(ctx, Request{
		Method:         method,
		Path:           path,
		JSON:           body,
		Token:          token,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
