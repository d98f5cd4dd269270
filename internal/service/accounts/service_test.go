package accounts_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/DhawalShankar/vartalang-sub001/internal/app"
	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	"github.com/DhawalShankar/vartalang-sub001/internal/service/accounts"
)

func setupService(t *testing.T) (*accounts.Service, *auth.JWTManager) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&db.User{}))

	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&db.User{
		ID: 1, Username: "asha", Email: "asha@test.com", PasswordHash: hash,
		Role: db.RoleLearner,
	}).Error)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, nil, logger)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return accounts.NewService(appCtx, jwtManager), jwtManager
}

func postLogin(t *testing.T, svc *accounts.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	svc.HandleLogin(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	svc, jwtManager := setupService(t)

	rec := postLogin(t, svc, `{"email":"asha@test.com","password":"password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"token"`)
	assert.Contains(t, body, `"userId":1`)

	// the issued token carries the user's id
	start := strings.Index(body, `"token":"`) + len(`"token":"`)
	end := strings.Index(body[start:], `"`)
	userID, _, err := jwtManager.VerifyToken(body[start : start+end])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), userID)
}

func TestLoginBadPassword(t *testing.T) {
	svc, _ := setupService(t)

	rec := postLogin(t, svc, `{"email":"asha@test.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUserSameResponse(t *testing.T) {
	svc, _ := setupService(t)

	unknown := postLogin(t, svc, `{"email":"ghost@test.com","password":"password"}`)
	badPass := postLogin(t, svc, `{"email":"asha@test.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Body.String(), badPass.Body.String())
}

func TestLoginMissingFields(t *testing.T) {
	svc, _ := setupService(t)

	rec := postLogin(t, svc, `{"email":"asha@test.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
