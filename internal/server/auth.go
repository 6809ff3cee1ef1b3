package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/session"
	"github.com/hyperjump/yomitori/internal/storage"
)

type contextKey string

const sessionKey contextKey = "session"

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// requireSession resolves the bearer token into a session and rejects
// unauthenticated requests.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sess := s.sessions.Get(token)
		if sess == nil {
			s.respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) session(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey).(*session.Session)
	return sess
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}
	if len(req.Password) < 6 {
		s.respondError(w, http.StatusBadRequest, "password must be at least 6 characters long")
		return
	}
	id, err := s.store.CreateUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		s.logger.Error("register failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Error("authenticate failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		s.respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	sess := s.sessions.Create(user.ID, user.Username)
	s.logger.Info("user logged in", zap.String("username", user.Username))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"token":    sess.Token,
		"username": sess.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	s.sessions.Delete(sess.Token)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
