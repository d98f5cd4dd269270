package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
)

func TestAuthenticateInjectsUserID(t *testing.T) {
	mgr := auth.NewJWTManager("test-secret", time.Hour)
	token, _, err := mgr.GenerateToken(7, "asha@test.com")
	require.NoError(t, err)

	var gotID uint64
	handler := Authenticate(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		gotID = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), gotID)
}

func TestAuthenticateRejects(t *testing.T) {
	mgr := auth.NewJWTManager("test-secret", time.Hour)
	handler := Authenticate(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not-a-token",
		"wrong secret": "Bearer " + mustToken(t, auth.NewJWTManager("other", time.Hour)),
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func mustToken(t *testing.T, mgr *auth.JWTManager) string {
	t.Helper()
	token, _, err := mgr.GenerateToken(1, "x@y.z")
	require.NoError(t, err)
	return token
}
