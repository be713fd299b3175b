package task

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/pkg/cerr"
)

// Server exposes the task CRUD surface as JSON REST handlers. Handlers
// record their outcome through cerr's response receiver; the middleware
// writes the body.
type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

// Register mounts the task routes under /users/{userID}/tasks.
func (s *Server) Register(r chi.Router) {
	r.Route("/users/{userID}/tasks", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{taskID}", s.handleGet)
		r.Put("/{taskID}", s.handleUpdate)
		r.Delete("/{taskID}", s.handleDelete)
		r.Post("/{taskID}/complete", s.handleComplete)
	})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

type taskResponse struct {
	Task *Task `json:"task"`
}

type taskListResponse struct {
	Tasks []*Task `json:"tasks"`
	Count int     `json:"count"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathUser(r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	var due *time.Time
	if req.DueDate != "" {
		parsed, err := parseDueDate(req.DueDate)
		if err != nil {
			cerr.SetJSONError(ctx, ErrInvalidDueDate)
			return
		}
		due = &parsed
	}

	t, err := s.svc.Add(ctx, userID, AddParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    Priority(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, taskResponse{Task: t})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathUser(r)
	if !ok {
		return
	}

	q := r.URL.Query()
	tasks, err := s.svc.List(ctx, userID, Filter{
		Status:   Status(q.Get("status")),
		Priority: Priority(q.Get("priority")),
		SortBy:   q.Get("sort_by"),
		Order:    q.Get("order"),
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, taskListResponse{Tasks: tasks, Count: len(tasks)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathUser(r)
	if !ok {
		return
	}

	t, err := s.svc.Get(ctx, userID, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, taskResponse{Task: t})
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

type updateTaskResponse struct {
	Task    *Task    `json:"task"`
	Changes []string `json:"changes"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathUser(r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	params := UpdateParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		p := Priority(*req.Priority)
		params.Priority = &p
	}
	if req.Status != nil {
		st := Status(*req.Status)
		params.Status = &st
	}
	if req.DueDate != nil {
		parsed, err := parseDueDate(*req.DueDate)
		if err != nil {
			cerr.SetJSONError(ctx, ErrInvalidDueDate)
			return
		}
		params.DueDate = &parsed
	}

	t, changes, err := s.svc.Update(ctx, userID, chi.URLParam(r, "taskID"), params)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, updateTaskResponse{Task: t, Changes: changes})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathUser(r)
	if !ok {
		return
	}

	t, err := s.svc.Delete(ctx, userID, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]string{
		"message": "Task '" + t.Title + "' has been deleted successfully",
	})
}

type completeTaskRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathUser(r)
	if !ok {
		return
	}

	var req completeTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	t, err := s.svc.Complete(ctx, userID, chi.URLParam(r, "taskID"), req.Completed)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, taskResponse{Task: t})
}

// pathUser returns the path user ID after checking it matches the
// authenticated user. On mismatch it records a permission error and reports
// false.
func pathUser(r *http.Request) (string, bool) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" || userID != auth.UserIDFromContext(ctx) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "cannot access another user's resources", nil)
		return "", false
	}
	return userID, true
}

// parseDueDate accepts RFC 3339 timestamps or plain dates.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
