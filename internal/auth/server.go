package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpilot/taskpilot/internal/user"
	"github.com/taskpilot/taskpilot/pkg/cerr"
)

// Server exposes registration and login.
type Server struct {
	users  user.Repository
	issuer *TokenIssuer
}

func NewServer(users user.Repository, issuer *TokenIssuer) *Server {
	return &Server{
		users:  users,
		issuer: issuer,
	}
}

// Register mounts the open auth routes.
func (s *Server) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type authResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "a valid email is required", nil)
		return
	}
	if len(req.Password) < 8 {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "password must be at least 8 characters", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}

	u := &user.User{
		ID:           ulid.Make().String(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}
	cerr.SetJSONResponse(ctx, authResponse{UserID: u.ID, Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		// Do not reveal whether the account exists.
		cerr.SetNewJSONError(ctx, cerr.Unauthenticated, "invalid email or password", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		cerr.SetNewJSONError(ctx, cerr.Unauthenticated, "invalid email or password", err)
		return
	}

	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}
	cerr.SetJSONResponse(ctx, authResponse{UserID: u.ID, Token: token})
}
