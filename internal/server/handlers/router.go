package handlers

import "net/http"

// Router обработчики и middleware, из которых собирается API
type Router struct {
	Auth         *AuthHandler
	Sync         *SyncHandler
	Health       *HealthHandler
	Authenticate func(http.Handler) http.Handler
	RateLimit    func(http.Handler) http.Handler
	Metrics      http.Handler // /metrics, может быть nil
}

// Handler регистрирует маршруты API
func (rt Router) Handler() http.Handler {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return rt.Authenticate(rt.RateLimit(h))
	}

	mux.HandleFunc("GET /api/v1/health", rt.Health.Health)
	mux.Handle("POST /api/v1/auth/signup", rt.RateLimit(http.HandlerFunc(rt.Auth.Signup)))
	mux.Handle("POST /api/v1/auth/login", rt.RateLimit(http.HandlerFunc(rt.Auth.Login)))

	mux.HandleFunc("GET /api/v1/syncs/server-time", rt.Sync.ServerTime)
	mux.Handle("POST /api/v1/clients/{clientId}/register", protected(rt.Sync.Register))
	mux.Handle("POST /api/v1/clients/{clientId}/reregister", protected(rt.Sync.Reregister))
	mux.Handle("GET /api/v1/syncs/{clientId}/status", protected(rt.Sync.Status))
	mux.Handle("POST /api/v1/syncs/{clientId}/pull", protected(rt.Sync.Pull))
	mux.Handle("POST /api/v1/syncs/{clientId}/push", protected(rt.Sync.Push))
	mux.Handle("POST /api/v1/syncs/{clientId}/conflicts/pull", protected(rt.Sync.PullConflicts))
	mux.Handle("POST /api/v1/syncs/{clientId}/conflicts/push", protected(rt.Sync.PushConflicts))
	mux.Handle("GET /api/v1/conflicts", protected(rt.Sync.ListConflicts))

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}
	return mux
}
