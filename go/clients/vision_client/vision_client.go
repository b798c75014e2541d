package vision_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VisionClient reads game letters from camera frames via the Anthropic
// vision API.
type VisionClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewVisionClient creates a vision client against the production API
func NewVisionClient(apiKey string) *VisionClient {
	return &VisionClient{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		model:   DefaultModel,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint, used for testing
func (c *VisionClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetModel overrides the vision model
func (c *VisionClient) SetModel(model string) {
	if model != "" {
		c.model = model
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ReadLetters sends the base64 JPEG to the vision model and returns the
// recognized letters restricted to the game alphabet, plus the raw model
// reply.
func (c *VisionClient) ReadLetters(ctx context.Context, imageBase64 string) (string, string, error) {
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: 50,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: "image/jpeg",
							Data:      imageBase64,
						},
					},
					{
						Type: "text",
						Text: recognitionPrompt,
					},
				},
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MessagesEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set(VersionHeader, APIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("vision API returned status code: %d, response: %s", resp.StatusCode, string(responseBody))
	}

	var parsed messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", "", fmt.Errorf("vision response contained no content")
	}

	raw := strings.ToUpper(strings.TrimSpace(parsed.Content[0].Text))
	return FilterLetters(raw), raw, nil
}

// FilterLetters keeps only characters from the fixed game alphabet
func FilterLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(LetterAlphabet, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
