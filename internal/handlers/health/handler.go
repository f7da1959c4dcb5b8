package health

import (
	"context"
	"net/http"
	"time"

	"todoapi/config"
	"todoapi/infras/otel"
	"todoapi/shared/cache"
	"todoapi/shared/constant"
	"todoapi/shared/logger"
	"todoapi/transport/http/response"
	"todoapi/transport/http/state"

	"github.com/go-chi/chi/v5"
)

const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"

	pingTimeout = 3 * time.Second
)

// Database is the part of the postgres connection the health check needs.
type Database interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

type Handler struct {
	db     Database
	cache  cache.RedisCache
	server *state.Server
	config *config.Config
	otel   otel.Otel
}

func New(db Database, cache cache.RedisCache, server *state.Server, config *config.Config, otel otel.Otel) Handler {
	return Handler{
		db:     db,
		cache:  cache,
		server: server,
		config: config,
		otel:   otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/health", handler.Check)
}

// Check reports whether the service can take traffic.
// @Summary Health check
// @Description Ping the database and the cache. Returns 503 while the server is shutting down or a dependency is unreachable.
// @Tags Health
// @Produce json
// @Success 200 {object} response.Data[Status]
// @Failure 503 {object} response.Data[Status]
// @Router /health [get]
func (handler *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".HealthCheck")
	defer scope.End()

	switch handler.server.Get() {
	case state.ServerStateInGracePeriod:
		response.WithPreparingShutdown(w)

		return
	case state.ServerStateInCleanupPeriod:
		response.WithUnhealthy(w)

		return
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := Status{Status: StatusOK, Database: StatusOK, Cache: StatusOK}

	if err := handler.db.Ping(ctx); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("database health check failed")

		status.Database = StatusUnhealthy
		status.Status = StatusUnhealthy
	}

	if !handler.config.Cache.Enable {
		status.Cache = StatusDisabled
	} else if err := handler.cache.Ping(ctx); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("cache health check failed")

		status.Cache = StatusUnhealthy
		status.Status = StatusUnhealthy
	}

	if status.Status != StatusOK {
		response.WithJSON(w, http.StatusServiceUnavailable, status)

		return
	}

	response.WithJSON(w, http.StatusOK, status)
}
