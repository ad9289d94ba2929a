// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/docquery-tui/internal/config"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds any single request/response cycle.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps response bodies at 10MB. SECURITY: prevents a
	// misbehaving service from exhausting memory.
	MaxResponseSize = 10 * 1024 * 1024
)

// PERFORMANCE: Shared HTTP client with connection pooling. Reusing
// connections avoids TLS handshake overhead on every call.
var sharedClient = &http.Client{
	Timeout: DefaultTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// TokenSource supplies the current bearer token, or "" when signed out.
type TokenSource func() string

// Client talks to the document question-answering service. Endpoints come
// from the config store on every call, so a runtime config update takes
// effect immediately.
type Client struct {
	cfg        *config.Store
	token      TokenSource
	httpClient *http.Client

	// RELIABILITY: client-side rate limit so a looping caller cannot
	// hammer the backend. 5 req/s with a small burst is far above any
	// interactive rate.
	limiter *rate.Limiter
}

// NewClient creates a client reading endpoints from cfg and bearer tokens
// from token. A nil token source means unauthenticated.
func NewClient(cfg *config.Store, token TokenSource) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		cfg:        cfg,
		token:      token,
		httpClient: sharedClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// setHeaders applies content type and bearer auth when a token exists.
func (c *Client) setHeaders(req *http.Request, contentType string) {
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// readResponse reads a size-capped response body.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// do executes a request and returns the decoded body, applying the shared
// error decode routine on non-2xx statuses.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType, fallback string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, relabelTransportError(err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data, fallback)
	}
	return data, nil
}

// doJSON marshals payload and executes a JSON request.
func (c *Client) doJSON(ctx context.Context, method, url string, payload any, fallback string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, method, url, bytes.NewReader(data), "application/json", fallback)
}

// =============================================================================
// AUTH
// =============================================================================

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinResponse struct {
	AccessToken string `json:"access_token"`
}

// Signin exchanges credentials for a bearer token.
func (c *Client) Signin(ctx context.Context, username, password string) (string, error) {
	body, err := c.doJSON(ctx, http.MethodPost, c.cfg.FullURL(config.EndpointSignin),
		credentials{Username: username, Password: password}, "Login failed")
	if err != nil {
		return "", err
	}

	var resp signinResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode signin response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", &APIError{Status: 200, Message: "Login failed"}
	}
	return resp.AccessToken, nil
}

// Signup registers a new account. It does not authenticate; the caller
// signs in separately.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	_, err := c.doJSON(ctx, http.MethodPost, c.cfg.FullURL(config.EndpointSignup),
		credentials{Username: username, Password: password}, "Signup failed")
	return err
}

// =============================================================================
// QUERY
// =============================================================================

type queryRequest struct {
	Text string `json:"text"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// AnswerFallback is returned when a successful query response carries no
// answer field.
const AnswerFallback = "I couldn't find an answer to your question."

// Query sends the raw question text and returns the service's answer.
func (c *Client) Query(ctx context.Context, text string) (string, error) {
	body, err := c.doJSON(ctx, http.MethodPost, c.cfg.FullURL(config.EndpointQuery),
		queryRequest{Text: text}, "Failed to get response from API")
	if err != nil {
		return "", err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Answer == "" {
		return AnswerFallback, nil
	}
	return resp.Answer, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// RemoteDocument is one entry of the service's document listing. Field
// names vary between service versions; both spellings are probed.
type RemoteDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	Pages       int    `json:"pages"`
	Location    string `json:"location"`
	Timestamp   string `json:"timestamp"`
}

// Key returns the record identity: id when present, else name.
func (d *RemoteDocument) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Name
}

// Display returns the name to show: display_name when present, else name.
func (d *RemoteDocument) Display() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// documentsEnvelope matches the `{documents: [...]}` response variant.
type documentsEnvelope struct {
	Documents []RemoteDocument `json:"documents"`
}

// ListDocuments fetches the service's document list, accepting both a bare
// array and a documents envelope.
func (c *Client) ListDocuments(ctx context.Context) ([]RemoteDocument, error) {
	body, err := c.do(ctx, http.MethodGet, c.cfg.FullURL(config.EndpointDocuments),
		nil, "", "Failed to fetch documents")
	if err != nil {
		return nil, err
	}

	var docs []RemoteDocument
	if err := json.Unmarshal(body, &docs); err == nil {
		return docs, nil
	}

	var env documentsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode documents response: %w", err)
	}
	return env.Documents, nil
}

// DeleteDocument asks the service to remove the document by display name.
func (c *Client) DeleteDocument(ctx context.Context, displayName string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, c.cfg.FullURL(config.EndpointDelete),
		map[string]string{"file_name": displayName}, "Failed to delete file")
	return err
}

// =============================================================================
// UPLOAD
// =============================================================================

// uploadResponse is the optional identifier carried by upload responses.
type uploadResponse struct {
	FileID string `json:"file_id"`
	ID     string `json:"id"`
}

// ProgressFunc receives the fraction (0.0-1.0) of the current file's bytes
// sent so far.
type ProgressFunc func(fraction float64)

// progressReader reports read progress against a known total.
type progressReader struct {
	r        io.Reader
	total    int64
	sent     int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 && p.progress != nil {
		p.sent += int64(n)
		f := float64(p.sent) / float64(p.total)
		if f > 1 {
			f = 1
		}
		p.progress(f)
	}
	return n, err
}

// UploadFile streams one file as a multipart POST, invoking progress as
// body bytes are consumed. Returns the server-issued id, which may be
// empty when the service response carries none.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader, progress ProgressFunc) (string, error) {
	// Build the multipart body up front; uploads here are document-sized,
	// not streaming-video-sized, and a buffered body gives an accurate
	// content length for progress reporting.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	reader := &progressReader{
		r:        &buf,
		total:    int64(buf.Len()),
		progress: progress,
	}

	body, err := c.do(ctx, http.MethodPost, c.cfg.FullURL(config.EndpointUpload),
		reader, mw.FormDataContentType(), "Failed to upload file")
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil
	}
	if resp.FileID != "" {
		return resp.FileID, nil
	}
	return resp.ID, nil
}
