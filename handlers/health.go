package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/bookstore/response"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB     Pinger
	Cache  Pinger
	Logger *zap.Logger
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health pings MongoDB and Redis concurrently. Either one down answers 500.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	var dbErr, cacheErr error
	var g errgroup.Group
	g.Go(func() error {
		dbErr = h.DB.Ping(ctx)
		return dbErr
	})
	g.Go(func() error {
		cacheErr = h.Cache.Ping(ctx)
		return cacheErr
	})
	degraded := g.Wait() != nil

	st := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]string{
			"api":      "up",
			"database": up(dbErr),
			"redis":    up(cacheErr),
		},
	}
	code := http.StatusOK
	if degraded {
		st.Status = "degraded"
		code = http.StatusInternalServerError
		h.Logger.Warn("health check degraded", zap.NamedError("database", dbErr), zap.NamedError("redis", cacheErr))
	}
	response.JSON(w, code, st)
}

func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Welcome to the bookstore API", nil)
}

func up(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
