package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"candleboard/pkg/errors"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider calls the Google Gemini generateContent API. Every
// request carries safety settings with all harm categories unblocked,
// matching the dashboard's fixed content-safety configuration.
type GeminiProvider struct {
	apiKey  string
	timeout time.Duration
	baseURL string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(apiKey string, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		timeout: timeout,
		baseURL: geminiAPIURL,
	}
}

// Name returns provider name.
func (p *GeminiProvider) Name() ProviderName { return ProviderNameGoogle }

// Chat sends a chat completion request to the Gemini API.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrNotConfigured, "gemini API key not configured")
	}

	geminiReq := p.convertToGemini(req)

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, errors.Wrap(err, "marshal gemini request")
	}

	url := fmt.Sprintf("%s/%s:generateContent", p.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	client := &http.Client{Timeout: p.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send gemini request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read gemini response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, errors.Wrapf(errors.ErrExternal, "gemini API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Status, errResp.Error.Message)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "gemini API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal gemini response")
	}

	return p.convertFromGemini(req.Model, &geminiResp)
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// unblockedSafetySettings disables blocking for every harm category.
func unblockedSafetySettings() []geminiSafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]geminiSafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, geminiSafetySetting{
			Category:  c,
			Threshold: "BLOCK_NONE",
		})
	}
	return settings
}

// convertToGemini converts our request format to Gemini's format.
// System messages are folded into the user content since the v1beta
// generateContent endpoint has no separate system role for this model.
func (p *GeminiProvider) convertToGemini(req ChatRequest) geminiRequest {
	geminiReq := geminiRequest{
		SafetySettings: unblockedSafetySettings(),
	}

	if req.Temperature > 0 || req.MaxTokens > 0 {
		geminiReq.GenerationConfig = &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		geminiReq.Contents = append(geminiReq.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	return geminiReq
}

// convertFromGemini converts Gemini's response to our format.
func (p *GeminiProvider) convertFromGemini(model string, resp *geminiResponse) (*ChatResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, errors.Wrap(errors.ErrExternal, "gemini response has no candidates")
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}

	return &ChatResponse{
		Model:   model,
		Content: strings.Join(parts, "\n"),
		Usage: Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
