package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/napatw/lingothai/internal/lesson"
)

// RemoteStore is the server-side session store. Calls may fail; the snapshot
// manager degrades to the local store when they do.
type RemoteStore interface {
	GetSession(ctx context.Context, key lesson.Key) (*lesson.Snapshot, error)
	PostSession(ctx context.Context, snap *lesson.Snapshot) error
	DeleteSession(ctx context.Context, key lesson.Key) error
}

// RemoteClient talks to the remote session service over HTTP.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ RemoteStore = (*RemoteClient)(nil)

func NewRemoteClient(baseURL string, httpClient *http.Client) *RemoteClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 4 * time.Second}
	}
	return &RemoteClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *RemoteClient) sessionURL(key lesson.Key) string {
	values := url.Values{}
	values.Set("user_id", key.UserID.String())
	return fmt.Sprintf("%s/v1/sessions/%s?%s", c.baseURL, url.PathEscape(key.LessonID), values.Encode())
}

func (c *RemoteClient) GetSession(ctx context.Context, key lesson.Key) (*lesson.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionURL(key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("session store non-200: %d", resp.StatusCode)
	}

	var snap lesson.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RemoteClient) PostSession(ctx context.Context, snap *lesson.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sessionURL(snap.Key), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("session store non-200: %d", resp.StatusCode)
	}
	return nil
}

func (c *RemoteClient) DeleteSession(ctx context.Context, key lesson.Key) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.sessionURL(key), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("session store non-200: %d", resp.StatusCode)
	}
	return nil
}
