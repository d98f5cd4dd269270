package matching

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DhawalShankar/vartalang-sub001/internal/app"
	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
	"github.com/DhawalShankar/vartalang-sub001/internal/middleware"
)

// Registrar ties the matching service into the HTTP router.
type Registrar struct {
	appCtx  *app.AppContext
	jwt     *auth.JWTManager
	limiter middleware.LimiterStore
}

// NewRegistrar creates a new Registrar for the matching service.
func NewRegistrar(appCtx *app.AppContext, jwt *auth.JWTManager, limiter middleware.LimiterStore) *Registrar {
	return &Registrar{appCtx: appCtx, jwt: jwt, limiter: limiter}
}

// Register attaches the matching endpoints to the router. All routes are
// behind the auth middleware; request creation is additionally rate
// limited per acting user.
func (r *Registrar) Register(router *mux.Router) {
	svc := NewService(r.appCtx)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.Authenticate(r.jwt))

	api.HandleFunc("/match/score/{candidateId}", svc.HandleScore).Methods(http.MethodGet)

	limited := middleware.RateLimit(r.limiter)(http.HandlerFunc(svc.HandleCreateRequest))
	api.Handle("/match/requests", limited).Methods(http.MethodPost)

	api.HandleFunc("/match/requests/{id}/accept", svc.HandleAccept).Methods(http.MethodPost)
	api.HandleFunc("/match/requests/{id}/reject", svc.HandleReject).Methods(http.MethodPost)

	api.HandleFunc("/notifications", svc.HandleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/count", svc.HandleNotificationCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/clear", svc.HandleClearAll).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}", svc.HandleDismiss).Methods(http.MethodDelete)
}
