package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// HTTPClient posts events to the host's callback endpoint, one POST per event
// name, mirroring the overlay's NUI callback contract.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

type HTTPConfig struct {
	// BaseURL is the host callback root; events post to BaseURL/<eventName>.
	BaseURL string
	Timeout time.Duration
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Send(ctx context.Context, eventName string, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return failure(CodeInvalidPayload, fmt.Sprintf("failed to encode payload: %v", err))
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, eventName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(CodeFetchError, err.Error())
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return failure(CodeTimeout, "host callback timed out")
		}
		return failure(CodeFetchError, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(CodeHTTPError, fmt.Sprintf("host callback failed (%d)", resp.StatusCode))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// Hosts that reply with an empty body still count as acknowledged.
		return Response{OK: true}
	}
	if !out.OK && out.Error != nil {
		normalized := Normalize(*out.Error, CodeBridgeError)
		out.Error = &normalized
	}
	return out
}

func failure(code ErrorCode, message string) Response {
	err := Normalize(Error{Code: code, Message: message}, code)
	return Response{OK: false, Error: &err}
}
