package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/policyguard/policyguard/internal/domain"
)

const (
	resetPath      = "/api/scan/reset"
	policyPath     = "/api/policies/upload"
	datasetPath    = "/api/employees/batch"
	triggerPath    = "/api/scan/trigger"
	violationsPath = "/api/violations/"
	historyPath    = "/history/"

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 64 << 10
)

// Client implements domain.ComplianceBackend, domain.HistorySource and
// domain.ViolationSource over the PolicyGuard HTTP/JSON API.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the service at baseURL. userID scopes history.
func New(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// Reset asks the server to clear all evaluation state.
func (c *Client) Reset(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, resetPath, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// UploadPolicy submits the policy document and reports how many rules the
// server extracted from it.
func (c *Client) UploadPolicy(ctx context.Context, policy domain.Candidate) (*domain.PolicyUpload, error) {
	var out policyResponse
	if err := c.upload(ctx, policyPath, policy, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// UploadDataset submits the dataset and reports how many records were
// imported.
func (c *Client) UploadDataset(ctx context.Context, dataset domain.Candidate) (*domain.DatasetUpload, error) {
	var out datasetResponse
	if err := c.upload(ctx, datasetPath, dataset, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// TriggerEvaluation runs the rules against the uploaded records.
func (c *Client) TriggerEvaluation(ctx context.Context) ([]domain.Violation, error) {
	resp, err := c.do(ctx, http.MethodPost, triggerPath, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw []violationDTO
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding evaluation result: %w", err)
	}

	out := make([]domain.Violation, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.toDomain())
	}
	return out, nil
}

// ListViolations fetches every recorded violation. A non-empty recordID is
// sent as the employee_id filter.
func (c *Client) ListViolations(ctx context.Context, recordID string) ([]domain.Violation, error) {
	path := violationsPath
	if recordID != "" {
		path += "?" + url.Values{"employee_id": {recordID}}.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw []violationDTO
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding violations: %w", err)
	}

	out := make([]domain.Violation, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.toDomain())
	}
	return out, nil
}

// ListHistory fetches the past runs of the configured user.
func (c *Client) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, historyPath+url.PathEscape(c.userID), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	raw, err := decodeHistory(body)
	if err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}

	out := make([]domain.HistoryEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *Client) upload(ctx context.Context, path string, file domain.Candidate, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	ct := file.MediaType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(file.Payload); err != nil {
		return fmt.Errorf("writing form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// do sends one request. Non-2xx answers become a *domain.StatusError holding
// the response body verbatim.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if runID, ok := domain.RunIDFrom(ctx); ok {
		req.Header.Set("X-Request-ID", runID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp, nil
}
