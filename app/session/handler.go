package session

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/mytheresa/storefront/app/web"
)

type SessionHandler struct {
	session *Session
}

func NewSessionHandler(s *Session) *SessionHandler {
	return &SessionHandler{session: s}
}

func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := web.Decode(r, &input); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Email == "" || input.Password == "" {
		web.Error(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	user, err := h.session.Login(r.Context(), input.Email, input.Password, input.Remember)
	if err != nil {
		web.APIError(w, r, err, "Login failed")
		return
	}
	web.JSON(w, http.StatusOK, user)
}

func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the cached profile, or a fresh one with ?refresh=1.
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" {
		user, err := h.session.Refresh(r.Context())
		if errors.Is(err, ErrNotLoggedIn) {
			web.Error(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		if err != nil {
			web.APIError(w, r, err, "Failed to load profile")
			return
		}
		web.JSON(w, http.StatusOK, user)
		return
	}

	user, err := h.session.User()
	if err != nil {
		web.Error(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	web.JSON(w, http.StatusOK, user)
}

// RequireLogin rejects requests made without a session.
func (s *Session) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token() == "" {
			web.Error(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests unless the cached profile has the admin role.
func (s *Session) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.User()
		if err != nil {
			web.Error(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		if !user.IsAdmin() {
			web.Error(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
