package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/deploy/contracts"
	"github.com/meysamhadeli/reactforge/deploy/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrBuildTimeout is terminal: the build did not finish within the poll
	// budget and is not retried.
	ErrBuildTimeout = errors.New("build did not finish in time")
	ErrBuildFailed  = errors.New("build failed")
)

const maxResponseSize = 1 << 20

// HTTPBuildTrigger talks to a build service that accepts a zip at
// POST {base}/builds and reports progress at GET {base}/builds/{id}.
type HTTPBuildTrigger struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxPolls     int
}

func NewHTTPBuildTrigger(baseURL string, pollInterval time.Duration, maxPolls int) contracts.IBuildTrigger {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 60
	}
	return &HTTPBuildTrigger{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

type buildStatusResponse struct {
	ID          string             `json:"id"`
	Status      models.BuildStatus `json:"status"`
	DownloadURL string             `json:"downloadUrl"`
	PreviewURL  string             `json:"previewUrl"`
	Error       string             `json:"error"`
}

// Trigger uploads the bundle, then polls at a fixed interval until the build
// succeeds, fails, or the poll count runs out.
func (t *HTTPBuildTrigger) Trigger(ctx context.Context, projectID string, bundle *models.Bundle) (*models.BuildResult, error) {
	if t.baseURL == "" {
		return nil, errors.New("no build service URL configured")
	}
	start := time.Now()

	created, err := t.submit(ctx, projectID, bundle)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"project": projectID, "build": created.ID})
	log.Info("build submitted")

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for poll := 1; poll <= t.maxPolls; poll++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		status, err := t.status(ctx, created.ID)
		if err != nil {
			log.Warnf("status poll %d failed: %v", poll, err)
			continue
		}
		log.WithField("status", status.Status).Debugf("poll %d", poll)

		switch status.Status {
		case models.BuildSucceeded:
			return &models.BuildResult{
				BuildID:     created.ID,
				Status:      status.Status,
				DownloadURL: status.DownloadURL,
				PreviewURL:  status.PreviewURL,
				Polls:       poll,
				Duration:    time.Since(start),
			}, nil
		case models.BuildFailed:
			return nil, fmt.Errorf("%w: %s", ErrBuildFailed, status.Error)
		}
	}
	return nil, fmt.Errorf("%w after %d polls", ErrBuildTimeout, t.maxPolls)
}

func (t *HTTPBuildTrigger) submit(ctx context.Context, projectID string, bundle *models.Bundle) (*buildStatusResponse, error) {
	endpoint := t.baseURL + "/builds"
	if projectID != "" {
		endpoint += "?project=" + url.QueryEscape(projectID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bundle.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/zip")
	req.Header.Set("X-Bundle-Hash", bundle.Hash)

	var created buildStatusResponse
	if err := t.do(req, &created); err != nil {
		return nil, fmt.Errorf("failed to submit build: %w", err)
	}
	if created.ID == "" {
		return nil, errors.New("build service returned no build id")
	}
	return &created, nil
}

func (t *HTTPBuildTrigger) status(ctx context.Context, buildID string) (*buildStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/builds/"+url.PathEscape(buildID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var status buildStatusResponse
	if err := t.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (t *HTTPBuildTrigger) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("build service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
