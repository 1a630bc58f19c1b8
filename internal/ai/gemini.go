package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// SystemInstruction primes the model as the workspace's coding assistant
const SystemInstruction = `You are a helpful coding assistant for a collaborative coding workspace.

When users ask you to create code:
1. Always provide complete, working code examples
2. Include proper error handling
3. Use modern best practices for the language in question
4. Explain what the code does briefly
5. Format code properly with comments

For general questions, be helpful and encouraging.

Keep responses concise but informative.`

// GeminiConfig configures a Gemini client
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

// Gemini implements Generator on the Gemini generateContent REST API
type Gemini struct {
	httpClient *http.Client
	cfg        GeminiConfig
}

// NewGemini creates a Gemini generator. Timeouts come from the caller's context.
func NewGemini(httpClient *http.Client, cfg GeminiConfig) *Gemini {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gemini{httpClient: httpClient, cfg: cfg}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// Generate sends prompt as a single user turn and returns the concatenated text parts
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	wireRequest := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: SystemInstruction}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	wireRequest.GenerationConfig.Temperature = g.cfg.Temperature

	body, err := json.Marshal(wireRequest)
	if err != nil {
		return "", fmt.Errorf("ai/gemini: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai/gemini: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("x-goog-api-key", g.cfg.APIKey)

	httpResponse, err := g.httpClient.Do(httpRequest)
	if err != nil {
		return "", fmt.Errorf("ai/gemini: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return "", readProviderError(httpResponse)
	}

	var wireResponse geminiResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wireResponse); err != nil {
		return "", fmt.Errorf("ai/gemini: decoding response: %w", err)
	}

	var text strings.Builder
	for _, candidate := range wireResponse.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

func (g *Gemini) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, url.PathEscape(g.cfg.Model))
}

// readProviderError parses {"error":{"code","message","status"}} bodies
func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wireError struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	providerErr := &ProviderError{StatusCode: httpResponse.StatusCode}
	if json.Unmarshal(body, &wireError) == nil {
		providerErr.Message = wireError.Error.Message
		providerErr.Status = wireError.Error.Status
	}
	return providerErr
}
