package httpapi

import (
	"encoding/json"
	"net/http"

	"astro-admin-go/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	User        models.User `json:"user"`
	DisplayName string      `json:"displayName"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, UserResponse{User: user, DisplayName: user.DisplayName()})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if r.URL.Query().Get("refresh") == "true" {
		fresh, err := s.Auth.Me(r.Context())
		if err != nil {
			writeFailure(w, err)
			return
		}
		user = fresh
	}
	WriteJSON(w, http.StatusOK, UserResponse{User: user, DisplayName: user.DisplayName()})
}
