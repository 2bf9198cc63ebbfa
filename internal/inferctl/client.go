package inferctl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inferd/pkg/types"
)

// APIError carries the server's error payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// normalizeBase turns the various accepted addr forms into a base URL:
// ":8080", "host:8080", "http://host:8080" all work.
func normalizeBase(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = "http://127.0.0.1:8080"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return strings.TrimRight(addr, "/")
}

// Client is a thin HTTP client for a running inferd.
type Client struct {
	base    string
	hc      *http.Client
	timeout time.Duration
}

// NewClient builds a client for addr. timeout bounds non-streaming calls;
// streaming calls run until the stream ends or ctx is canceled.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{base: normalizeBase(addr), hc: &http.Client{}, timeout: timeout}
}

// Base returns the normalized base URL.
func (c *Client) Base() string { return c.base }

func (c *Client) get(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	debug("GET %s", c.base+path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.postRaw(ctx, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postRaw(ctx context.Context, path string, in any) (*http.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	debug("POST %s %s", c.base+path, body)
	return c.hc.Do(req)
}

func decodeError(resp *http.Response) error {
	var apiErr types.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
}

// Status fetches /status.
func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.get(ctx, "/status", &out)
	return out, err
}

// Models fetches /models.
func (c *Client) Models(ctx context.Context) (types.ModelsResponse, error) {
	var out types.ModelsResponse
	err := c.get(ctx, "/models", &out)
	return out, err
}

// Generate runs a non-streaming generation.
func (c *Client) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	req.Stream = false
	var out types.GenerateResponse
	err := c.post(ctx, "/generate", req, &out)
	return out, err
}

// GenerateStream runs a streaming generation, invoking onToken for every
// token line and onRaw (when set) for every NDJSON line including the
// final one. It returns the final response line.
func (c *Client) GenerateStream(ctx context.Context, req types.GenerateRequest, onToken func(types.TokenLine), onRaw func([]byte)) (types.GenerateResponse, error) {
	req.Stream = true
	var final types.GenerateResponse
	resp, err := c.postRaw(ctx, "/generate", req)
	if err != nil {
		return final, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return final, decodeError(resp)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if onRaw != nil {
			onRaw(line)
		}
		var probe struct {
			Done bool `json:"done"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			return final, fmt.Errorf("bad stream line %q: %w", line, err)
		}
		if probe.Done {
			if err := json.Unmarshal(line, &final); err != nil {
				return final, err
			}
			return final, nil
		}
		var tok types.TokenLine
		if err := json.Unmarshal(line, &tok); err != nil {
			return final, err
		}
		if onToken != nil {
			onToken(tok)
		}
	}
	if err := sc.Err(); err != nil {
		return final, err
	}
	return final, fmt.Errorf("stream ended without a final line")
}

// Cancel asks the server to stop an in-flight generation.
func (c *Client) Cancel(ctx context.Context, req types.CancelRequest) (types.CancelResponse, error) {
	var out types.CancelResponse
	err := c.post(ctx, "/cancel", req, &out)
	return out, err
}

// SetParams updates engine sampling parameters.
func (c *Client) SetParams(ctx context.Context, req types.ParamsRequest) (types.ParamsView, error) {
	var out types.ParamsView
	err := c.post(ctx, "/params", req, &out)
	return out, err
}

// Reset returns an engine to its idle state.
func (c *Client) Reset(ctx context.Context, req types.ResetRequest) (types.ResetResponse, error) {
	var out types.ResetResponse
	err := c.post(ctx, "/reset", req, &out)
	return out, err
}
