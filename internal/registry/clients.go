package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

// HTTP clients for the collaborator services. One shared shape: short timeout,
// JSON bodies, non-2xx mapped onto the error taxonomy.

// HTTPUserDirectory resolves users against the identity service
type HTTPUserDirectory struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPUserDirectory(baseURL string) *HTTPUserDirectory {
	return &HTTPUserDirectory{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPUserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("directory lookup: %w", apperrors.ErrTransient)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("directory lookup returned %d: %w", resp.StatusCode, apperrors.ErrTransient)
	}
}

// HTTPProjectRegistry resolves projects against the project service
type HTTPProjectRegistry struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPProjectRegistry(baseURL string) *HTTPProjectRegistry {
	return &HTTPProjectRegistry{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPProjectRegistry) Lookup(ctx context.Context, projectID string) (*Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects/"+url.PathEscape(projectID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("project lookup: %w", apperrors.ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("project: %w", apperrors.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("project lookup returned %d: %w", resp.StatusCode, apperrors.ErrTransient)
	}

	var project Project
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	return &project, nil
}

// HTTPModerator screens content against the moderation service
type HTTPModerator struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPModerator(baseURL string) *HTTPModerator {
	return &HTTPModerator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPModerator) Check(ctx context.Context, content string) (Verdict, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/moderate", bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("moderation check: %w", apperrors.ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("moderation check returned %d: %w", resp.StatusCode, apperrors.ErrTransient)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Verdict{}, fmt.Errorf("failed to decode verdict: %w", err)
	}
	return verdict, nil
}
