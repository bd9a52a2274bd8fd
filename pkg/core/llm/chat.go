package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ChatProvider talks to any OpenAI-compatible chat-completions endpoint.
// DeepSeek and DashScope (Qwen) both expose this shape, so one client
// covers both.
type ChatProvider struct {
	Name         string
	Endpoint     string
	KeyEnvs      []string
	DefaultModel string

	client *http.Client
}

func NewDeepSeekProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "deepseek",
		Endpoint:     "https://api.deepseek.com/chat/completions",
		KeyEnvs:      []string{"DEEPSEEK_API_KEY"},
		DefaultModel: "deepseek-chat",
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

func NewQwenProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "qwen",
		Endpoint:     "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		KeyEnvs:      []string{"DASHSCOPE_API_KEY", "QWEN_API_KEY"},
		DefaultModel: "qwen-max",
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
	Stream bool `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *ChatProvider) apiKey(options map[string]interface{}) string {
	if val, ok := options["api_key"].(string); ok && val != "" {
		return val
	}
	for _, env := range p.KeyEnvs {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return ""
}

func (p *ChatProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.apiKey(options)
	if apiKey == "" {
		return "", fmt.Errorf("%s: no API key set (%v)", p.Name, p.KeyEnvs)
	}

	body := chatRequest{
		Model: p.DefaultModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	if val, ok := options[OptionModel].(string); ok && val != "" {
		body.Model = val
	}
	if val, ok := options[OptionMaxTokens].(int); ok && val > 0 {
		body.MaxTokens = val
	}
	if val, ok := options[OptionJSONMode].(bool); ok && val {
		body.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: api call failed: %w", p.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", p.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status %d: %s", p.Name, resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", p.Name, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s: api error: %s", p.Name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s: empty response", p.Name)
	}
	return parsed.Choices[0].Message.Content, nil
}
