package planning

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
)

// Plan is the ordered output of one generation run. Drafts keep the model's
// timeline order.
type Plan struct {
	ProjectName  string             `json:"projectName" yaml:"project_name"`
	DurationDays int                `json:"durationDays" yaml:"duration_days"`
	Model        string             `json:"model,omitempty" yaml:"model,omitempty"`
	Drafts       []domain.TaskDraft `json:"drafts" yaml:"drafts"`
	Anomalies    []Anomaly          `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
}

// Generator asks a model for a task breakdown and turns the reply into drafts.
// It does not retry; the llm client owns timeouts and its retry budget.
type Generator struct {
	client llm.LLMClient
}

// NewGenerator creates a Generator backed by client.
func NewGenerator(client llm.LLMClient) *Generator {
	return &Generator{client: client}
}

// GeneratePlan returns ErrGenerationFailed when the model call fails or the
// reply is empty, and a *MalformedResponseError (ErrMalformedResponse) when no
// task list can be read from the reply.
func (g *Generator) GeneratePlan(ctx context.Context, projectName string, durationDays int) (*Plan, error) {
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}

	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskPlan,
		SystemPrompt: planSystemPrompt,
		UserPrompt:   BuildPlanPrompt(projectName, durationDays),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("%w: model returned no text", ErrGenerationFailed)
	}

	records, err := ExtractRecords(resp.Text)
	if err != nil {
		return nil, err
	}

	drafts, anomalies := Normalize(records)
	return &Plan{
		ProjectName:  projectName,
		DurationDays: durationDays,
		Model:        resp.Model,
		Drafts:       drafts,
		Anomalies:    anomalies,
	}, nil
}
