package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client asks an external service to synthesize speech for question audio.
// Playback is best-effort by contract: every failure is logged and swallowed,
// and an unconfigured client is a no-op.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "tts").Logger(),
	}
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Play requests synthesis for the given text. Errors never propagate.
func (c *Client) Play(ctx context.Context, text string) {
	if c.endpoint == "" || text == "" {
		return
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, Language: "th-TH"})
	if err != nil {
		c.logger.Warn().Err(err).Msg("tts request marshal failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn().Err(err).Msg("tts request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("text", text).Msg("tts call failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn().Err(fmt.Errorf("status %d", resp.StatusCode)).Str("text", text).Msg("tts call rejected")
	}
}
