package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

// maxResponseSize caps CMS response bodies (5MB)
const maxResponseSize = 5 * 1024 * 1024

// Client implements the CMS entry surface over the content API. Every
// request carries the session bearer token; an unauthorized response
// triggers exactly one re-login and retry, on the assumption that the
// token expired rather than that the credentials went bad.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *SessionManager
	logger     *zap.Logger

	// knownTypes caches positive content-type probes; a type that exists
	// once does not vanish at runtime
	mu         sync.RWMutex
	knownTypes map[domainsync.EntityType]bool
}

// NewClient creates a CMS entry client sharing the session manager's endpoint
func NewClient(cfg SessionConfig, session *SessionManager, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		logger:     logger,
		knownTypes: make(map[domainsync.EntityType]bool),
	}
}

// TypeExists reports whether the CMS exposes a content type for the
// entity type. Probe failures read as absent so a half-configured CMS
// schema degrades to skipped entity types instead of hard errors.
func (c *Client) TypeExists(ctx context.Context, t domainsync.EntityType) bool {
	c.mu.RLock()
	known := c.knownTypes[t]
	c.mu.RUnlock()
	if known {
		return true
	}

	status, _, err := c.do(ctx, http.MethodGet, "/"+t.ContentType(), nil)
	if err != nil || status < 200 || status >= 300 {
		return false
	}

	c.mu.Lock()
	c.knownTypes[t] = true
	c.mu.Unlock()
	return true
}

// Create inserts a new entry and returns the remote id the CMS assigned
func (c *Client) Create(ctx context.Context, t domainsync.EntityType, payload domainsync.EntryPayload) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/"+t.ContentType(), payload)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", domainsync.ErrRemoteWriteFailed, t, err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: create %s returned status %d", domainsync.ErrRemoteWriteFailed, t, status)
	}

	var created struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID.String() == "" {
		return "", fmt.Errorf("%w: create %s response carried no id", domainsync.ErrRemoteWriteFailed, t)
	}
	return created.ID.String(), nil
}

// Update writes an existing entry. A 404 maps to ErrEntryNotFound so the
// caller can fall back to create.
func (c *Client) Update(ctx context.Context, t domainsync.EntityType, remoteID string, payload domainsync.EntryPayload) error {
	status, _, err := c.do(ctx, http.MethodPut, "/"+t.ContentType()+"/"+remoteID, payload)
	if err != nil {
		return fmt.Errorf("%w: update %s %s: %v", domainsync.ErrRemoteWriteFailed, t, remoteID, err)
	}
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", domainsync.ErrEntryNotFound, t, remoteID)
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: update %s %s returned status %d", domainsync.ErrRemoteWriteFailed, t, remoteID, status)
	}
	return nil
}

// Delete removes an entry. A 404 means the entry is already gone, which
// is the state the caller wanted.
func (c *Client) Delete(ctx context.Context, t domainsync.EntityType, remoteID string) error {
	status, _, err := c.do(ctx, http.MethodDelete, "/"+t.ContentType()+"/"+remoteID, nil)
	if err != nil {
		return fmt.Errorf("%w: delete %s %s: %v", domainsync.ErrRemoteWriteFailed, t, remoteID, err)
	}
	if status == http.StatusNotFound {
		c.logger.Debug("entry already absent on delete",
			zap.String("entity_type", t.String()), zap.String("remote_id", remoteID))
		return nil
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: delete %s %s returned status %d", domainsync.ErrRemoteWriteFailed, t, remoteID, status)
	}
	return nil
}

// Exists reports whether the entry is present. Only a clean 404 answers
// false; any other failure is ErrLookupFailed and must not be read as
// absence.
func (c *Client) Exists(ctx context.Context, t domainsync.EntityType, remoteID string) (bool, error) {
	status, _, err := c.do(ctx, http.MethodGet, "/"+t.ContentType()+"/"+remoteID, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %s %s: %v", domainsync.ErrLookupFailed, t, remoteID, err)
	}
	switch {
	case status == http.StatusNotFound:
		return false, nil
	case status >= 200 && status < 300:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s %s returned status %d", domainsync.ErrLookupFailed, t, remoteID, status)
	}
}

// do sends an authenticated request. On 401 or 403 it invalidates the
// session, logs in again and retries exactly once; a second rejection is
// returned as-is.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	status, body, err := c.send(ctx, method, path, payload)
	if err != nil {
		return 0, nil, err
	}
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return status, body, nil
	}

	c.logger.Info("cms rejected token, re-authenticating",
		zap.String("method", method), zap.String("path", path))
	c.session.Invalidate()
	if err := c.session.Login(ctx); err != nil {
		return 0, nil, err
	}
	return c.send(ctx, method, path, payload)
}

func (c *Client) send(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.session.Token(ctx)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// Ensure Client implements EntryClient
var _ domainsync.EntryClient = (*Client)(nil)
