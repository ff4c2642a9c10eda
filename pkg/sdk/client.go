package sdk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/coderag/internal/version"
)

const maxFrameSize = 1 << 20

// Client talks to a coderag server. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("coderag: invalid base url %q", baseURL)
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    cfg.httpClient,
		obs:     obs,
	}, nil
}

// Ask streams the code assistant's answer. Iteration ends after the last
// token; a transport or server failure is yielded once as the error.
func (c *Client) Ask(ctx context.Context, sessionID, message string) iter.Seq2[string, error] {
	return c.stream(ctx, "ask", "/api/chat/code-assistant", sessionID, message)
}

// Chat streams a general conversation answer without retrieval.
func (c *Client) Chat(ctx context.Context, sessionID, message string) iter.Seq2[string, error] {
	return c.stream(ctx, "chat", "/api/chat/general", sessionID, message)
}

func (c *Client) stream(ctx context.Context, op, path, sessionID, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		start := time.Now()
		var err error
		defer func() { c.obs.observe(op, start, err) }()

		body, _ := json.Marshal(map[string]string{"message": message, "session_id": sessionID})
		var resp *http.Response
		resp, err = c.send(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 64*1024), maxFrameSize)
		for sc.Scan() {
			data, ok := strings.CutPrefix(sc.Text(), "data: ")
			if !ok {
				continue
			}
			var f frame
			if err = json.Unmarshal([]byte(data), &f); err != nil {
				err = fmt.Errorf("coderag: decode frame: %w", err)
				yield("", err)
				return
			}
			if f.Error != "" {
				err = fmt.Errorf("coderag: %s", f.Error)
				yield("", err)
				return
			}
			if f.Token != "" && !yield(f.Token, nil) {
				return
			}
			if f.Complete {
				return
			}
		}
		err = sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		err = fmt.Errorf("coderag: stream ended before completion: %w", err)
		yield("", err)
	}
}

// Status returns knowledge-base readiness.
func (c *Client) Status(ctx context.Context) (st Status, err error) {
	start := time.Now()
	defer func() { c.obs.observe("status", start, err) }()

	err = c.doJSON(ctx, http.MethodGet, "/api/code-assistant/status", nil, &st)
	return st, err
}

// Clear deletes every stored chunk.
func (c *Client) Clear(ctx context.Context) (res ClearResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("clear", start, err) }()

	err = c.doJSON(ctx, http.MethodDelete, "/api/code-assistant/documents", nil, &res)
	return res, err
}

// Ingest uploads files for ingestion.
func (c *Client) Ingest(ctx context.Context, files ...File) (sum IngestSummary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	if len(files) == 0 {
		return sum, fmt.Errorf("%w: no files", ErrInvalidInput)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, perr := mw.CreateFormFile("files", f.Name)
		if perr != nil {
			return sum, fmt.Errorf("coderag: multipart: %w", perr)
		}
		if _, perr = part.Write(f.Data); perr != nil {
			return sum, fmt.Errorf("coderag: multipart: %w", perr)
		}
	}
	if err = mw.Close(); err != nil {
		return sum, fmt.Errorf("coderag: multipart: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/ingest", &buf, mw.FormDataContentType())
	if err != nil {
		return sum, err
	}
	defer resp.Body.Close()
	if err = json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		err = fmt.Errorf("coderag: decode response: %w", err)
	}
	return sum, err
}

// History returns the messages of a session.
func (c *Client) History(ctx context.Context, sessionID string) (msgs []Message, err error) {
	start := time.Now()
	defer func() { c.obs.observe("history", start, err) }()

	var out struct {
		Messages []Message `json:"messages"`
	}
	err = c.doJSON(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID)+"/history", nil, &out)
	return out.Messages, err
}

// Health checks the health of all server components. A degraded or
// unhealthy server is reported in the status, not as an error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return h, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return h, fmt.Errorf("coderag: health: %w", err)
	}
	defer resp.Body.Close()
	if err = json.NewDecoder(resp.Body).Decode(&h); err != nil {
		err = fmt.Errorf("coderag: decode response: %w", err)
	}
	return h, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("coderag: encode request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coderag: decode response: %w", err)
	}
	return nil
}

// send performs the request and converts non-2xx responses to *APIError.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coderag: %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if json.Unmarshal(data, apiErr) != nil || apiErr.Code == "" {
		apiErr.Code = "http_error"
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return nil, apiErr
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("coderag: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// IsNotReady reports whether err means the server could not reach its index.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrIndexUnavailable)
}
