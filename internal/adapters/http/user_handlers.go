package http

import (
	"net/http"

	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

func ListUsersHandler(creds *application.CredentialService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := creds.ListUsers(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		if users == nil {
			users = []domain.User{}
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, users)
	}
}

// CreateUserHandler lets an administrator create an account, optionally with ROLE_ADMIN.
func CreateUserHandler(creds *application.CredentialService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		if fields := validateAccount(req.Username, req.Email, req.Password); fields != nil {
			domain.NewErrorResponse(domain.ErrBadRequest, "Invalid payload", "").WithFields(fields).WriteJSON(w, http.StatusBadRequest)
			return
		}

		user, err := creds.CreateUser(r.Context(), req.Username, req.Email, req.Password, req.Admin)
		if err != nil {
			writeAccountError(w, r, logger, err)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusCreated, user)
	}
}
