package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPGenerator calls a generator service over plain HTTP:
// POST {GeneratorURL}/complete with {"prompt": ...}, answered by {"text": ...}.
type HTTPGenerator struct {
	httpClient  *http.Client
	key         string
	completeURL string
}

func NewHTTPGenerator(cfg Config, client *http.Client) (*HTTPGenerator, error) {
	if cfg.GeneratorURL == "" {
		return nil, fmt.Errorf("generator endpoint not configured")
	}
	if client == nil {
		client = &http.Client{}
	}
	base := strings.TrimSuffix(cfg.GeneratorURL, "/")

	return &HTTPGenerator{
		httpClient:  client,
		key:         cfg.GeneratorKey,
		completeURL: base + "/complete",
	}, nil
}

// Complete sends the prompt and returns the generated text unchanged.
func (g *HTTPGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completeRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.completeURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.key)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out completeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generator payload: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("generator returned empty text")
	}
	return out.Text, nil
}

type completeRequest struct {
	Prompt string `json:"prompt"`
}

type completeResponse struct {
	Text string `json:"text"`
}
