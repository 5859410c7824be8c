package web

import (
	"net/http"
	"time"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/logging"
	"github.com/Kurama07a/buyer-lead-app/internal/web/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	*auth.Session
	Message string `json:"message"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.auth.Register(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("user registered", "user_id", sess.User.ID)
	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess, Message: "Registration successful"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if in.Email == "" || in.Password == "" {
		s.respondError(w, r, auth.ErrMissingCredentials)
		return
	}

	sess, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("user logged in", "user_id", sess.User.ID)
	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Message: "Login successful"})
}

// handleLogout revokes the presented token, if any, and always clears the
// cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r, s.cfg.Auth.CookieName)
	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": identity(r)})
}
