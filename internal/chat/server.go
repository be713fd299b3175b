// Package chat is the conversational entry point: it routes each message
// either through the command interpreter or, when the message is not a task
// command, through the AI fallback, and records the exchange in the user's
// conversation history.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/taskpilot/taskpilot/internal/ai"
	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/conversation"
	"github.com/taskpilot/taskpilot/internal/interpreter"
	"github.com/taskpilot/taskpilot/pkg/cerr"
)

const titleMaxLen = 50

type Server struct {
	interp        *interpreter.Interpreter
	generator     ai.Generator
	conversations conversation.Repository
	now           func() time.Time
}

func NewServer(interp *interpreter.Interpreter, generator ai.Generator, conversations conversation.Repository) *Server {
	return &Server{
		interp:        interp,
		generator:     generator,
		conversations: conversations,
		now:           time.Now,
	}
}

// Register mounts the chat route under /users/{userID}/chat.
func (s *Server) Register(r chi.Router) {
	r.Post("/users/{userID}/chat", s.handleChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response       string              `json:"response"`
	ConversationID string              `json:"conversation_id"`
	Result         *interpreter.Result `json:"result,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" || userID != auth.UserIDFromContext(ctx) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "cannot access another user's resources", nil)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Message == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "message must not be empty", nil)
		return
	}

	resp := chatResponse{}
	if interpreter.IsTaskCommand(req.Message) {
		result := s.interp.Interpret(ctx, userID, req.Message)
		resp.Response = result.Message
		resp.Result = &result
	} else {
		reply, err := s.generator.GenerateReply(ctx, req.Message)
		if err != nil {
			slog.WarnContext(ctx, "assistant reply failed", "error", err)
			reply = "I couldn't reach the assistant just now, but I can still manage your tasks. " +
				"Try 'Add a task to buy groceries' or 'Show my pending tasks'."
		}
		resp.Response = reply
	}

	conv, err := s.appendExchange(ctx, userID, req.Message, resp.Response)
	if err != nil {
		// The command already ran; losing history must not fail the reply.
		slog.WarnContext(ctx, "failed to record conversation", "error", err)
	} else {
		resp.ConversationID = conv.ID
	}
	cerr.SetJSONResponse(ctx, resp)
}

// appendExchange appends the user message and the assistant reply to the
// user's most recent conversation, creating one when none exists yet.
func (s *Server) appendExchange(ctx context.Context, userID, message, reply string) (*conversation.Conversation, error) {
	now := s.now()

	conv, err := s.conversations.Latest(ctx, userID)
	created := false
	switch {
	case err == nil:
	case cerr.IsCode(err, cerr.NotFound):
		conv = &conversation.Conversation{
			ID:        ulid.Make().String(),
			UserID:    userID,
			Title:     truncateTitle(message),
			CreatedAt: now,
		}
		created = true
	default:
		return nil, err
	}

	conv.Messages = append(conv.Messages,
		conversation.Message{
			ID:        ulid.Make().String(),
			Role:      conversation.RoleUser,
			Content:   message,
			CreatedAt: now,
		},
		conversation.Message{
			ID:        ulid.Make().String(),
			Role:      conversation.RoleAssistant,
			Content:   reply,
			CreatedAt: now,
		},
	)
	conv.UpdatedAt = now

	if created {
		err = s.conversations.Create(ctx, conv)
	} else {
		err = s.conversations.Update(ctx, conv)
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func truncateTitle(message string) string {
	if len(message) <= titleMaxLen {
		return message
	}
	return message[:titleMaxLen]
}
