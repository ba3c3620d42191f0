package http

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/middleware"
	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the caller's profile.
type LoginResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates a username/password pair and returns a bearer token.
// Unknown users and wrong passwords produce the same response.
func LoginHandler(creds *application.CredentialService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			domain.NewErrorResponse(domain.ErrBadRequest, "Invalid payload", "username and password are required.").WriteJSON(w, http.StatusBadRequest)
			return
		}

		res, err := creds.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, application.ErrUserNotFound) || errors.Is(err, application.ErrBadCredentials) {
				metrics.IncrementAuthFailure("bad_credentials")
				logger.Warn(r.Context(), "Login rejected", "username", req.Username, "error", err.Error())
				domain.NewErrorResponse(domain.ErrBadCredentials, "Invalid username or password", "").WriteJSON(w, http.StatusUnauthorized)
				return
			}
			logger.Error(r.Context(), "Login failed", "username", req.Username, "error", err.Error())
			domain.NewErrorResponse(domain.ErrInternal, "An unexpected error occurred.", "Internal server error.").WriteJSON(w, http.StatusInternalServerError)
			return
		}

		writeJSON(r.Context(), w, logger, http.StatusOK, LoginResponse{
			Token:    res.Token.Value,
			Type:     "Bearer",
			ID:       res.UserID,
			Username: res.Principal.Subject,
			Email:    res.Email,
			Roles:    res.Principal.RoleStrings(),
		})
	}
}

// RegisterHandler creates a self-service account.
func RegisterHandler(creds *application.CredentialService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		if fields := validateAccount(req.Username, req.Email, req.Password); fields != nil {
			domain.NewErrorResponse(domain.ErrBadRequest, "Invalid payload", "").WithFields(fields).WriteJSON(w, http.StatusBadRequest)
			return
		}

		msg, err := creds.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			writeAccountError(w, r, logger, err)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, MessageResponse{Message: msg})
	}
}

// WhoAmIHandler echoes the authenticated principal.
func WhoAmIHandler(logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			domain.NewErrorResponse(domain.ErrUnauthorized, "Authentication is required", "").WriteJSON(w, http.StatusUnauthorized)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, principal)
	}
}

func validateAccount(username, email, password string) map[string]string {
	fields := make(map[string]string)
	if n := len(strings.TrimSpace(username)); n < 3 || n > 20 {
		fields["username"] = "Username must be between 3 and 20 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil || len(email) > 50 {
		fields["email"] = "Email must be a valid address of at most 50 characters"
	}
	if password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// writeAccountError maps registration and user creation failures. Password policy
// violations are reported rule by rule.
func writeAccountError(w http.ResponseWriter, r *http.Request, logger domain.Logger, err error) {
	var weak *application.WeakPasswordError
	switch {
	case errors.Is(err, application.ErrUsernameTaken):
		domain.NewErrorResponse(domain.ErrConflict, "Username is already taken", "").WriteJSON(w, http.StatusConflict)
	case errors.Is(err, application.ErrEmailTaken):
		domain.NewErrorResponse(domain.ErrConflict, "Email is already in use", "").WriteJSON(w, http.StatusConflict)
	case errors.As(err, &weak):
		domain.NewErrorResponse(domain.ErrPasswordPolicy, "Password does not meet complexity requirements", strings.Join(weak.Violations, "; ")).
			WithFields(map[string]string{"password": strings.Join(weak.Violations, "; ")}).
			WriteJSON(w, http.StatusBadRequest)
	default:
		logger.Error(r.Context(), "Account creation failed", "error", err.Error())
		domain.NewErrorResponse(domain.ErrInternal, "An unexpected error occurred.", "Internal server error.").WriteJSON(w, http.StatusInternalServerError)
	}
}
