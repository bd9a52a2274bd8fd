package llm

import (
	"context"
	"fmt"
)

// Config selects providers per task, with a global default. Loaded from the
// service yaml config.
type Config struct {
	ActiveProvider string                `yaml:"active_provider" json:"active_provider"`
	Tasks          map[string]TaskConfig `yaml:"tasks" json:"tasks"`
}

// TaskConfig overrides the provider or model for one task (e.g.
// "ticker_lookup", "narrative").
type TaskConfig struct {
	Provider    string `yaml:"provider" json:"provider"`
	Model       string `yaml:"model" json:"model"`
	Description string `yaml:"description" json:"description"`
}

// Manager resolves the Provider to use for a given task.
type Manager struct {
	config    Config
	providers map[string]Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]Provider{
			"gemini":   &GeminiProvider{},
			"deepseek": NewDeepSeekProvider(),
			"qwen":     NewQwenProvider(),
		},
	}
}

// ProviderFor returns the provider for a task, honoring per-task overrides
// before the global active provider. Always returns a usable provider.
func (m *Manager) ProviderFor(task string) Provider {
	if taskCfg, ok := m.config.Tasks[task]; ok && taskCfg.Provider != "" {
		if p, ok := m.providers[taskCfg.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["gemini"]
}

// ModelFor returns the configured model override for a task, or "".
func (m *Manager) ModelFor(task string) string {
	if taskCfg, ok := m.config.Tasks[task]; ok {
		return taskCfg.Model
	}
	return ""
}

// Execute runs a prompt through the provider configured for the task.
func (m *Manager) Execute(ctx context.Context, task, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.ProviderFor(task)
	if provider == nil {
		return "", fmt.Errorf("no provider available for task %q", task)
	}
	if options == nil {
		options = map[string]interface{}{}
	}
	if _, ok := options[OptionModel]; !ok {
		if model := m.ModelFor(task); model != "" {
			options[OptionModel] = model
		}
	}
	return provider.GenerateResponse(ctx, prompt, systemPrompt, options)
}
