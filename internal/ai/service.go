// Package ai generates conversational replies for messages the command
// interpreter could not handle.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	claudeagent "github.com/kazz187/claude-agent-sdk-go"

	"github.com/taskpilot/taskpilot/pkg/cerr"
)

// Generator produces an assistant reply for a free-form user message.
type Generator interface {
	GenerateReply(ctx context.Context, message string) (string, error)
}

const defaultSystemPrompt = "You are a friendly assistant inside a todo list app. " +
	"Answer briefly and, when it helps, remind the user you can manage their tasks " +
	"(add, list, update, complete, delete) if they phrase a request that way."

// ClaudeGenerator asks Claude for a single-turn reply.
type ClaudeGenerator struct {
	systemPrompt string
	timeout      time.Duration
}

func NewClaudeGenerator(systemPrompt string) *ClaudeGenerator {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &ClaudeGenerator{
		systemPrompt: systemPrompt,
		timeout:      30 * time.Second,
	}
}

func (g *ClaudeGenerator) GenerateReply(ctx context.Context, message string) (string, error) {
	maxTurns := 1
	opts := &claudeagent.ClaudeAgentOptions{
		SystemPrompt: g.systemPrompt,
		MaxTurns:     &maxTurns,
	}

	queryCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := claudeagent.RunQuerySync(queryCtx, message, opts)
	if err != nil {
		return "", cerr.NewError(cerr.Unavailable, "assistant is unavailable", err)
	}
	if result.Result == nil {
		return "", cerr.NewError(cerr.Unavailable, "assistant is unavailable", fmt.Errorf("empty result"))
	}
	return strings.TrimSpace(result.Result.Result), nil
}

// Disabled is the generator used when the AI fallback is turned off. It
// points the user back at the commands the interpreter understands.
type Disabled struct{}

func (Disabled) GenerateReply(_ context.Context, _ string) (string, error) {
	return "I can help you manage your tasks. Try 'Add a task to buy groceries', " +
		"'Show my pending tasks', or 'Mark the meeting task as complete'.", nil
}
