package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/conversation"
	conversationrepo "github.com/taskpilot/taskpilot/internal/conversation/repositoryimpl"
	"github.com/taskpilot/taskpilot/internal/interpreter"
	"github.com/taskpilot/taskpilot/internal/task"
	taskrepo "github.com/taskpilot/taskpilot/internal/task/repositoryimpl"
	"github.com/taskpilot/taskpilot/pkg/cerr"
	"github.com/taskpilot/taskpilot/pkg/storage"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) GenerateReply(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.reply, g.err
}

type chatFixture struct {
	handler       http.Handler
	generator     *stubGenerator
	taskRepo      task.Repository
	conversations conversation.Repository
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	taskRepo := taskrepo.NewYAMLRepository(store)
	conversationRepo := conversationrepo.NewYAMLRepository(store)
	generator := &stubGenerator{reply: "Hi! Ask me about your tasks."}

	srv := NewServer(interpreter.New(task.NewService(taskRepo)), generator, conversationRepo)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	// Stand-in for the token middleware.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithUserID(req.Context(), "user-1")))
		})
	})
	srv.Register(r)

	return &chatFixture{
		handler:       r,
		generator:     generator,
		taskRepo:      taskRepo,
		conversations: conversationRepo,
	}
}

func (f *chatFixture) post(t *testing.T, userID, message string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"message": message})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/users/%s/chat", userID), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestChatTaskCommand(t *testing.T) {
	f := newChatFixture(t)

	rec, resp := f.post(t, "user-1", "Add a task to buy groceries with high priority")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Task 'buy groceries' has been added successfully", resp.Response)
	assert.NotEmpty(t, resp.ConversationID)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Success)
	assert.Equal(t, 0, f.generator.calls, "task commands must not reach the AI fallback")

	tasks, err := f.taskRepo.List(context.Background(), "user-1", task.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy groceries", tasks[0].Title)
	assert.Equal(t, task.PriorityHigh, tasks[0].Priority)
}

func TestChatFallsBackToGenerator(t *testing.T) {
	f := newChatFixture(t)

	rec, resp := f.post(t, "user-1", "good morning!")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hi! Ask me about your tasks.", resp.Response)
	assert.Nil(t, resp.Result)
	assert.Equal(t, 1, f.generator.calls)
}

func TestChatGeneratorFailureDegrades(t *testing.T) {
	f := newChatFixture(t)
	f.generator.err = assert.AnError

	rec, resp := f.post(t, "user-1", "good morning!")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, resp.Response, "I can still manage your tasks")
	assert.NotEmpty(t, resp.ConversationID)
}

func TestChatRecordsConversation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, first := f.post(t, "user-1", "Add a task to buy groceries")
	_, second := f.post(t, "user-1", "Show my tasks")
	assert.Equal(t, first.ConversationID, second.ConversationID)

	conv, err := f.conversations.Get(ctx, "user-1", first.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, conversation.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "Add a task to buy groceries", conv.Messages[0].Content)
	assert.Equal(t, conversation.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "Add a task to buy groceries", conv.Title)
}

func TestChatFailedCommandStillReplies(t *testing.T) {
	f := newChatFixture(t)

	rec, resp := f.post(t, "user-1", "Delete the nonexistent task")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "No task found containing 'nonexistent'. Could you be more specific?", resp.Response)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.Success)
	assert.Equal(t, interpreter.ErrTaskNotFound, resp.Result.Err)
}

func TestChatRejectsOtherUsersPath(t *testing.T) {
	f := newChatFixture(t)

	rec, _ := f.post(t, "user-2", "Show my tasks")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	f := newChatFixture(t)

	rec, _ := f.post(t, "user-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
