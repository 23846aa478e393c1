package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

type client struct {
	apiKey      string
	model       string
	backupModel string
	baseURL     string
	hc          *http.Client
}

// NewClient builds the Gemini edit collaborator. A missing API key is a
// startup precondition failure, not a per-call one.
func NewClient(apiKey, model, backupModel string, timeout time.Duration) (*client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	return &client{
		apiKey:      apiKey,
		model:       model,
		backupModel: backupModel,
		baseURL:     defaultBaseURL,
		hc:          &http.Client{Timeout: timeout},
	}, nil
}

// EditImage sends the image and instruction to the generative model and
// returns its text plus the edited image bytes, if any. When the primary
// model responds without image data, the dedicated image-generation model is
// tried once as an internal fallback. From the caller's point of view this
// is a single atomic operation.
func (c *client) EditImage(ctx context.Context, image []byte, instruction string) (*domain.EditResult, error) {
	result, err := c.generate(ctx, c.model, image, instruction)
	if err != nil {
		return nil, err
	}

	if len(result.Image) == 0 && c.backupModel != "" {
		slog.InfoContext(ctx, "No image from primary model, trying backup model", "backupModel", c.backupModel)

		backup, err := c.generate(ctx, c.backupModel, image, instruction)
		if err != nil {
			slog.WarnContext(ctx, "Backup model failed, keeping primary text response", "backupModel", c.backupModel, "err", err)
			return result, nil
		}
		if len(backup.Image) > 0 {
			return backup, nil
		}
	}

	return result, nil
}

func (c *client) generate(ctx context.Context, model string, image []byte, instruction string) (*domain.EditResult, error) {
	genRequest := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: instruction},
				{InlineData: &inlineData{MimeType: "image/png", Data: image}},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	resp, err := c.sendRequest(ctx, url, genRequest)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	var genResponse generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResponse); err != nil {
		return nil, fmt.Errorf("decoding response data: %w", err)
	}

	if len(genResponse.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	result := &domain.EditResult{}
	for _, p := range genResponse.Candidates[0].Content.Parts {
		if p.Text != "" {
			result.Text += p.Text
		}
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			result.Image = p.InlineData.Data
		}
	}

	return result, nil
}

func (c *client) sendRequest(ctx context.Context, url string, genRequest generateContentRequest) (*http.Response, error) {
	body, err := json.Marshal(genRequest)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing HTTP request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}
