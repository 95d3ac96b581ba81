package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/models"
)

// sessionCookieName is the HTTP-only cookie carrying the session token.
const sessionCookieName = "authToken"

// sessionCookieMaxAge is the cookie lifetime (7 days). The token inside
// expires on its own schedule; the cookie just stops being sent.
const sessionCookieMaxAge = 7 * 24 * 60 * 60

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a local registration
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Plan     string `json:"plan"`
}

// HandleLogin handles local email/password login
func HandleLogin(orch *auth.Orchestrator, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, auth.Errorf(auth.ErrBadRequest, "invalid request body"))
			return
		}

		log.Println("Login: Authentication attempt")

		result, err := orch.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			log.Println("Login: Authentication failed")
			writeError(w, err)
			return
		}

		log.Println("Login: Successful authentication")

		setSessionCookie(w, result.Token, cfg)
		writeJSON(w, http.StatusOK, result)
	}
}

// HandleRegister handles local registration
func HandleRegister(orch *auth.Orchestrator, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, auth.Errorf(auth.ErrBadRequest, "invalid request body"))
			return
		}

		if req.Email == "" || req.Name == "" {
			writeError(w, auth.Errorf(auth.ErrBadRequest, "email and name are required"))
			return
		}

		result, err := orch.Register(r.Context(), auth.Registration{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			Provider: models.ProviderLocal,
			Plan:     req.Plan,
		})
		if err != nil {
			log.Println("Register: Registration failed")
			writeError(w, err)
			return
		}

		setSessionCookie(w, result.Token, cfg)
		writeJSON(w, http.StatusCreated, result)
	}
}

// HandleLogout clears the session cookie. Tokens are stateless, so logout is
// purely a cookie operation.
func HandleLogout(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Environment == "production",
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	}
}

// HandleGetCurrentClient returns the authenticated client
func HandleGetCurrentClient() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := r.Context().Value(clientContextKey).(*models.Client)
		writeJSON(w, http.StatusOK, auth.Sanitize(client))
	}
}

func setSessionCookie(w http.ResponseWriter, token string, cfg *config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its HTTP status with a safe message.
// Raw store or provider error text never reaches the response.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, auth.StatusCode(err), map[string]string{"error": auth.Message(err)})
}
