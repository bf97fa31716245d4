package service

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/mattalagalams/nsp-agent/config"
	"github.com/mattalagalams/nsp-agent/model"
)

// OpenAIRuntime talks to an Assistants-API-compatible agent runtime
// (Azure AI Foundry project endpoints expose this surface).
type OpenAIRuntime struct {
	client *openai.Client
	model  string
}

func NewOpenAIRuntime(cfg *config.AgentConfig) *OpenAIRuntime {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	return &OpenAIRuntime{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (r *OpenAIRuntime) Name() string { return "azure_foundry" }

func (r *OpenAIRuntime) Model() string { return r.model }

func (r *OpenAIRuntime) CreateThread(ctx context.Context) (string, error) {
	thread, err := r.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.ID, nil
}

func (r *OpenAIRuntime) CreateMessage(ctx context.Context, threadID, role, content string) error {
	_, err := r.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *OpenAIRuntime) CreateRun(ctx context.Context, threadID, agentID, instructions string) (string, error) {
	run, err := r.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:            agentID,
		AdditionalInstructions: instructions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return run.ID, nil
}

func (r *OpenAIRuntime) GetRun(ctx context.Context, threadID, runID string) (RunState, error) {
	run, err := r.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return RunState{}, fmt.Errorf("failed to retrieve run: %w", err)
	}

	state := RunState{Status: mapRunStatus(run.Status)}
	if run.LastError != nil {
		state.ErrDetail = run.LastError.Message
	}
	return state, nil
}

func (r *OpenAIRuntime) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	order := "desc"
	list, err := r.client.ListMessage(ctx, threadID, nil, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]ThreadMessage, 0, len(list.Messages))
	for _, msg := range list.Messages {
		text := ""
		for _, part := range msg.Content {
			if part.Text != nil {
				text = part.Text.Value
				break
			}
		}
		messages = append(messages, ThreadMessage{Role: msg.Role, Text: text})
	}
	return messages, nil
}

func (r *OpenAIRuntime) CancelRun(ctx context.Context, threadID, runID string) error {
	if _, err := r.client.CancelRun(ctx, threadID, runID); err != nil {
		return fmt.Errorf("failed to cancel run: %w", err)
	}
	return nil
}

// mapRunStatus converts the runtime's run status into the local taxonomy.
func mapRunStatus(status openai.RunStatus) string {
	switch status {
	case openai.RunStatusQueued:
		return model.StatusQueued
	case openai.RunStatusInProgress:
		return model.StatusRunning
	case openai.RunStatusRequiresAction:
		return model.StatusWaitingOnAction
	case openai.RunStatusCompleted:
		return model.StatusCompleted
	case openai.RunStatusExpired:
		return model.StatusTimedOut
	default:
		// failed, cancelling, cancelled
		return model.StatusFailed
	}
}
