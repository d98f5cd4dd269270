package accounts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DhawalShankar/vartalang-sub001/internal/app"
	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"
	"github.com/DhawalShankar/vartalang-sub001/internal/repository"
)

// Service handles account endpoints: login issues the JWT that identifies
// the acting user on every match call.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	jwt    *auth.JWTManager
}

// NewService creates the accounts service.
func NewService(appCtx *app.AppContext, jwt *auth.JWTManager) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		jwt:    jwt,
	}
}

// HandleLogin authenticates email+password and returns a signed token.
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), body.Email)
	if err != nil {
		// same response as a bad password: do not reveal which was wrong
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, body.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.appCtx.Logger.Error("failed to generate token", "user_id", user.ID, "err", err)
		writeError(w, svcErr.HTTPStatus(err), "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token":     token,
		"userId":    user.ID,
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
