package planning

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/planpilot/internal/llm"
)

// Describer writes short free-text descriptions for projects and tasks.
type Describer struct {
	client llm.LLMClient
}

// NewDescriber creates a Describer backed by client.
func NewDescriber(client llm.LLMClient) *Describer {
	return &Describer{client: client}
}

// SuggestProjectDescription returns a 2-3 sentence summary of a project's
// goals and scope.
func (d *Describer) SuggestProjectDescription(ctx context.Context, projectName string) (string, error) {
	return d.generate(ctx, llm.TaskProjectDescription, BuildProjectDescriptionPrompt(projectName))
}

// GenerateTaskDescription returns a short bullet list of steps for a task.
func (d *Describer) GenerateTaskDescription(ctx context.Context, projectName, taskTitle string) (string, error) {
	return d.generate(ctx, llm.TaskTaskDescription, BuildTaskDescriptionPrompt(projectName, taskTitle))
}

func (d *Describer) generate(ctx context.Context, task llm.TaskType, prompt string) (string, error) {
	resp, err := d.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: describeSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: model returned no text", ErrGenerationFailed)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrGenerationFailed)
	}
	return text, nil
}
