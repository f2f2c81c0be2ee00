package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

// SessionManager owns the CMS service-account session. The CMS issues a
// bearer token on login; the token carries no known lifetime, so it is
// kept until a request comes back unauthorized and is then replaced.
type SessionManager struct {
	baseURL    string
	identifier string
	password   string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

// SessionConfig holds the CMS endpoint and service-account credentials
type SessionConfig struct {
	BaseURL        string
	Identifier     string
	Password       string
	TimeoutSeconds int
}

// NewSessionManager creates a session manager. No login happens here;
// call Login or let the first Token call authenticate lazily.
func NewSessionManager(cfg SessionConfig, logger *zap.Logger) *SessionManager {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SessionManager{
		baseURL:    cfg.BaseURL,
		identifier: cfg.Identifier,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Login authenticates against the CMS and replaces the cached token
func (s *SessionManager) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"identifier": s.identifier,
		"password":   s.password,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domainsync.ErrAuthenticationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/local", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domainsync.ErrAuthenticationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainsync.ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: login returned status %d", domainsync.ErrAuthenticationFailed, resp.StatusCode)
	}

	var payload struct {
		JWT string `json:"jwt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: invalid login response: %v", domainsync.ErrAuthenticationFailed, err)
	}
	if payload.JWT == "" {
		return fmt.Errorf("%w: login response carried no token", domainsync.ErrAuthenticationFailed)
	}

	s.mu.Lock()
	s.token = payload.JWT
	s.mu.Unlock()

	s.logger.Info("cms session established")
	return nil
}

// Token returns the cached bearer token, logging in first if none is held
func (s *SessionManager) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" {
		return token, nil
	}

	if err := s.Login(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	token = s.token
	s.mu.Unlock()
	return token, nil
}

// Invalidate drops the cached token so the next Token call re-authenticates
func (s *SessionManager) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Healthy probes the CMS liveness endpoint
func (s *SessionManager) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.baseURL+"/_health", nil)
	if err != nil {
		return false
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// WaitUntilHealthy polls the liveness endpoint until the CMS answers or
// the context ends. Used at startup so the bridge comes up cleanly when
// the CMS boots more slowly than it does.
func (s *SessionManager) WaitUntilHealthy(ctx context.Context, interval time.Duration) error {
	if s.Healthy(ctx) {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: cms never became healthy: %v", domainsync.ErrAuthenticationFailed, ctx.Err())
		case <-ticker.C:
			if s.Healthy(ctx) {
				return nil
			}
		}
	}
}
