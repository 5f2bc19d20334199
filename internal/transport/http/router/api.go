package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"outdoor-furniture/internal/core/auth"
	"outdoor-furniture/internal/core/config"
	"outdoor-furniture/internal/core/server"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/transport/http/ez"
	"outdoor-furniture/internal/transport/http/handler"
	mdw "outdoor-furniture/internal/transport/http/middleware"
)

// Deps 由 main 组装后注入
type Deps struct {
	JWT       *auth.JWTer
	Directory *service.Directory
	Purchases *service.Purchases
	Catalog   *service.Catalog
	Checks    map[string]handler.Pinger
}

func NewAPIEngine(l *zap.Logger, app config.App, d Deps) *gin.Engine {
	r := server.NewRouter(l, server.Options{Mode: ginMode(app.Env), AllowOrigins: app.CORS.AllowOrigins})

	lim := app.Limits
	limiter := mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst)
	if lim.PerIP {
		limiter = mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst)
	}

	// 中间件
	r.Use(
		mdw.RequestID(),
		limiter,
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	gates := handler.Gates{
		Authenticate:  mdw.Authenticate(d.JWT, l),
		RequireAdmin:  mdw.RequireAdmin(d.Directory, l),
		RequireSeller: mdw.RequireSeller(d.Directory, l),
	}
	issuer := service.NewTokenIssuer(d.JWT, d.Directory)

	MountAll(ez.New(&r.RouterGroup, l),
		handler.NewSystemHandler(d.Checks),
		handler.NewUserHandler(d.Directory, issuer, gates),
		handler.NewPurchaseHandler(d.Purchases, gates),
		handler.NewCatalogHandler(d.Catalog, gates),
	)
	return r
}

func ginMode(env string) string {
	switch env {
	case "prod", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	}
	return gin.DebugMode
}
