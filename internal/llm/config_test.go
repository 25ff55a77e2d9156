package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, 60000, cfg.TaskTimeout(TaskPlan))
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskProjectDescription))
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("PLANPILOT_LLM_TIMEOUT_MS", "9000")
	t.Setenv("PLANPILOT_LLM_PLAN_TIMEOUT_MS", "45000")
	t.Setenv("PLANPILOT_LLM_TASK_DESCRIPTION_TIMEOUT_MS", "7000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 45000, cfg.TaskTimeout(TaskPlan))
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskTaskDescription))
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskProjectDescription))
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("PLANPILOT_LLM_PLAN_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 60000, cfg.TaskTimeout(TaskPlan))
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 1234
	assert.Equal(t, 1234, cfg.TaskTimeout(TaskType("unknown")))
}

func TestLoadConfig_GeminiDefaults(t *testing.T) {
	t.Setenv("PLANPILOT_LLM_PROVIDER", "gemini")
	t.Setenv("PLANPILOT_LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg := LoadConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, defaultGeminiEndpoint, cfg.Endpoint)
	assert.Equal(t, defaultGeminiModel, cfg.Model)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestLoadConfig_ExplicitEndpointWinsOverProviderDefault(t *testing.T) {
	t.Setenv("PLANPILOT_LLM_PROVIDER", "gemini")
	t.Setenv("PLANPILOT_LLM_ENDPOINT", "http://proxy.local/v1beta")
	t.Setenv("PLANPILOT_LLM_MODEL", "gemini-custom")

	cfg := LoadConfig()

	assert.Equal(t, "http://proxy.local/v1beta", cfg.Endpoint)
	assert.Equal(t, "gemini-custom", cfg.Model)
}

func TestLoadConfig_Disable(t *testing.T) {
	t.Setenv("PLANPILOT_LLM_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
