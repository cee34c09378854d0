// Package planner turns a goal description into an ordered daily task
// plan by calling an external text-generation service. The service is
// treated as slow and unreliable: calls are retried under their own
// policy, separate from the spreadsheet path, and responses are parsed
// defensively because the model does not always honor the format.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mesh-intelligence/stride/internal/retry"
	"github.com/mesh-intelligence/stride/pkg/types"
)

// OpenAIPlanner generates plans through the OpenAI chat completion API.
type OpenAIPlanner struct {
	client *openai.Client
	model  string
	exec   *retry.Executor
	log    *slog.Logger
}

var _ types.Planner = (*OpenAIPlanner)(nil)

// NewOpenAI creates a planner from config. BaseURL, when set, redirects
// calls to an API-compatible endpoint (a local model or a test server).
func NewOpenAI(cfg types.PlannerConfig, policy types.RetryPolicy, log *slog.Logger) *OpenAIPlanner {
	if log == nil {
		log = slog.Default()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIPlanner{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		exec:   retry.New(policy),
		log:    log,
	}
}

const systemPrompt = `You are a goal-planning assistant. Given a goal, its deadline,
and the minutes available per day, produce a day-by-day task plan.
Respond with a JSON array only, no prose, in this exact shape:
[{"date": "DD.MM.YYYY", "task": "what to do that day"}]
Rules: one entry per date, dates strictly unique, no date before the
start date or after the deadline, every task achievable in the given
daily minutes.`

// GeneratePlan asks the model for a plan and parses the reply. The
// remote call is retried on transient failures; a reply that parses but
// violates the plan rules is surfaced as an error, never silently fixed.
func (p *OpenAIPlanner) GeneratePlan(ctx context.Context, req types.PlanRequest) ([]types.PlannedTask, error) {
	prompt := fmt.Sprintf(
		"Goal: %s\nDetails: %s\nStart date: %s\nDeadline: %s\nAvailable minutes per day: %d",
		req.Title, req.Description,
		types.FormatDate(req.StartDate), types.FormatDate(req.Deadline),
		req.DailyMinutes,
	)

	var raw string
	err := p.exec.Do(ctx, func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("completion returned no choices: %w", types.ErrUnavailable)
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		p.log.Error("plan generation failed", "goal", req.Title, "error", err)
		return nil, err
	}

	plan, err := parsePlan(raw, req)
	if err != nil {
		p.log.Error("plan response rejected", "goal", req.Title, "error", err)
		return nil, err
	}
	p.log.Info("plan generated", "goal", req.Title, "tasks", len(plan))
	return plan, nil
}

// classify maps API failures onto the standard taxonomy so the retry
// executor can tell transient conditions from terminal ones.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("completion: %v: %w", err, types.ErrUnavailable)
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fmt.Errorf("completion: %v: %w", err, types.ErrPermission)
		default:
			return fmt.Errorf("completion: %w", err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("completion: %v: %w", err, types.ErrUnavailable)
	}
	return fmt.Errorf("completion: %w", err)
}

// planLine is the wire shape of one generated task.
type planLine struct {
	Date string `json:"date"`
	Task string `json:"task"`
}

// stripFences removes a Markdown code fence if the model wrapped its
// JSON in one, a common failure mode even when told not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
