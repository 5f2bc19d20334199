package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"outdoor-furniture/internal/transport/http/ez"
	resp "outdoor-furniture/internal/transport/http/response"
)

const Banner = "Outdoor-furniture is running"

// Pinger 存储或缓存的连通性检查
type Pinger func(ctx context.Context) error

// SystemHandler / /health /metrics
type SystemHandler struct {
	checks map[string]Pinger
}

func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{checks: checks}
}

func (h *SystemHandler) Priority() int { return 0 }

func (h *SystemHandler) MountAPI(e ez.EZ) {
	ez.Register(e, ez.Action[struct{}, string]{
		Method: http.MethodGet,
		Path:   "/",
		Binder: ez.BindNone,
		Handler: func(*gin.Context, *struct{}) (string, error) {
			return Banner, nil
		},
	})

	ez.Register(e, ez.Action[struct{}, map[string]string]{
		Method: http.MethodGet,
		Path:   "/health",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]string, error) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			out := map[string]string{"status": "ok"}
			failed := false
			for name, ping := range h.checks {
				if err := ping(ctx); err != nil {
					out[name] = err.Error()
					failed = true
					continue
				}
				out[name] = "ok"
			}
			if failed {
				out["status"] = "degraded"
				return nil, &ez.AErr{Code: resp.CodeUnavailable, Msg: "dependency unavailable", Data: out}
			}
			return out, nil
		},
	})

	e.Handle(http.MethodGet, "/metrics", gin.WrapH(promhttp.Handler()))
}
