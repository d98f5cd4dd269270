package accounts

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DhawalShankar/vartalang-sub001/internal/app"
	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
)

// Registrar ties the accounts service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
	jwt    *auth.JWTManager
}

// NewRegistrar creates a new Registrar for the accounts service.
func NewRegistrar(appCtx *app.AppContext, jwt *auth.JWTManager) *Registrar {
	return &Registrar{appCtx: appCtx, jwt: jwt}
}

// Register attaches the accounts endpoints to the router. Login is
// unauthenticated by nature.
func (r *Registrar) Register(router *mux.Router) {
	svc := NewService(r.appCtx, r.jwt)
	router.HandleFunc("/api/auth/login", svc.HandleLogin).Methods(http.MethodPost)
}
