/*
Package ai proxies assistant conversations to an upstream generative model.

The Provider interface keeps handlers testable; the production implementation
talks to the Gemini generateContent REST endpoint.
*/
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	// replies are short chat turns, so the output is capped tightly
	maxOutputTokens = 500
	temperature     = 0.7
)

// ChatMessage is one prior turn of the assistant conversation, as sent by clients.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates an assistant reply for a message given prior history.
type Provider interface {
	Chat(ctx context.Context, message string, history []ChatMessage) (string, error)
}

// GeminiClient is a Provider backed by the Gemini REST API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient constructs a GeminiClient for the given API key and model.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewGeminiClientWithBaseURL is like NewGeminiClient but targets a custom
// endpoint. Used by tests and Gemini-compatible gateways.
func NewGeminiClientWithBaseURL(apiKey, model, baseURL string) *GeminiClient {
	c := NewGeminiClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Chat sends the prior history plus the new message to the model and returns its reply.
func (c *GeminiClient) Chat(ctx context.Context, message string, history []ChatMessage) (string, error) {
	reqBody := geminiRequest{}
	reqBody.GenerationConfig.MaxOutputTokens = maxOutputTokens
	reqBody.GenerationConfig.Temperature = temperature

	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}

	reqBody.Contents = append(reqBody.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: message}},
	})

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai provider request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai provider returned status %d", res.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode ai provider response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "Sorry, I could not generate a response.", nil
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
