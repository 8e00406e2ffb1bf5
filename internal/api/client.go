// Package api is the typed HTTP client for the protanni server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBody = 4 << 20

// Error is a non-successful API response. It satisfies
// optimistic.StatusError, so failed mutations are classified as rejected.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (e *Error) HTTPStatus() int { return e.Status }

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do sends one request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	data, err := parseEnvelope(resp.StatusCode, raw)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

type rawEnvelope struct {
	OK    *bool           `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// parseEnvelope accepts the {ok,data,error} envelope as well as legacy
// {"error":"message"} bodies and bare JSON payloads. The status code alone
// decides success: a 2xx body that carries no usable data yields none.
func parseEnvelope(status int, raw []byte) (json.RawMessage, error) {
	var env rawEnvelope
	decodeErr := json.Unmarshal(raw, &env)
	if status >= 200 && status < 300 {
		switch {
		case decodeErr != nil:
			if json.Valid(raw) {
				return json.RawMessage(raw), nil
			}
			return nil, nil
		case env.OK != nil && *env.OK:
			return env.Data, nil
		case env.OK == nil && len(env.Error) == 0:
			return json.RawMessage(raw), nil
		}
		return nil, nil
	}
	if decodeErr != nil {
		msg := strings.TrimSpace(string(raw))
		if r := []rune(msg); len(r) > 200 {
			msg = string(r[:200])
		}
		if msg == "" {
			msg = "invalid JSON response from server"
		}
		return nil, &Error{Status: status, Code: codeForStatus(status), Message: msg}
	}

	e := &Error{Status: status, Code: codeForStatus(status), Message: "request failed"}
	if len(env.Error) > 0 {
		var legacy string
		var body errorBody
		switch {
		case json.Unmarshal(env.Error, &legacy) == nil:
			if legacy != "" {
				e.Message = legacy
			}
		case json.Unmarshal(env.Error, &body) == nil:
			if body.Code != "" {
				e.Code = body.Code
			}
			if body.Message != "" {
				e.Message = body.Message
			}
			e.Details = body.Details
		}
	}
	return nil, e
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusBadGateway:
		return "DATABASE_ERROR"
	}
	return "SERVER_ERROR"
}
