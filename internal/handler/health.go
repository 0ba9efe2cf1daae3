package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/segyhp/loan-console/pkg/response"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// HealthHandler probes the optional stores; nil dependencies are skipped
type HealthHandler struct {
	db      *sqlx.DB
	redis   *redis.Client
	timeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, redis *redis.Client, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			status.Status = "error"
			status.Checks["database"] = "failed: " + err.Error()
		} else {
			status.Checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		redisCtx, redisCancel := context.WithTimeout(r.Context(), h.timeout)
		defer redisCancel()

		if err := h.redis.Ping(redisCtx).Err(); err != nil {
			status.Status = "error"
			status.Checks["redis"] = "failed: " + err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	if status.Status == "error" {
		response.Failure(w, http.StatusServiceUnavailable, "Service not ready", status)
		return
	}

	response.Success(w, status)
}
