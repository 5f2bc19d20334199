package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"outdoor-furniture/internal/core/auth"
	"outdoor-furniture/internal/domain"
	resp "outdoor-furniture/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyEmail  = "email"
)

// TokenVerifier auth.JWTer 满足
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup service.Directory 满足；查不到返回 nil, nil
type UserLookup interface {
	Lookup(ctx context.Context, email string) (*domain.User, error)
}

var authzRejects = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "authz_rejections_total", Help: "Requests rejected by an authorization gate"},
	[]string{"gate", "reason"},
)

func init() { prometheus.MustRegister(authzRejects) }

func reject(c *gin.Context, l *zap.Logger, gate, reason string, code int) {
	authzRejects.WithLabelValues(gate, reason).Inc()
	l.Debug("authz reject",
		zap.String("gate", gate),
		zap.String("reason", reason),
		zap.String("path", c.FullPath()),
		zap.String("rid", c.GetString(KeyRequestID)),
	)
	c.AbortWithStatusJSON(resp.Status(code), resp.Error(code, CodeMsg(code)))
}

// CodeMsg 网关拒绝时的文案
func CodeMsg(code int) string {
	switch code {
	case resp.CodeUnauthorized:
		return "unauthorized access"
	case resp.CodeForbidden:
		return "forbidden access"
	}
	return ""
}

// Authenticate 无凭证 401，凭证无效 403；通过后把邮箱放进上下文
func Authenticate(v TokenVerifier, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := v.Verify(auth.BearerToken(c.GetHeader("Authorization")))
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			reject(c, l, "authenticate", "missing", resp.CodeUnauthorized)
			return
		case err != nil:
			reject(c, l, "authenticate", "invalid", resp.CodeForbidden)
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyEmail, claims.Email)
		c.Next()
	}
}

// Email 取 Authenticate 写入的邮箱
func Email(c *gin.Context) (string, bool) {
	e := c.GetString(KeyEmail)
	return e, e != ""
}

// RequireAdmin 必须挂在 Authenticate 之后
func RequireAdmin(users UserLookup, l *zap.Logger) gin.HandlerFunc {
	return requireUser("requireAdmin", users, l, (*domain.User).IsAdmin)
}

// RequireSeller 必须挂在 Authenticate 之后
func RequireSeller(users UserLookup, l *zap.Logger) gin.HandlerFunc {
	return requireUser("requireSeller", users, l, (*domain.User).IsSeller)
}

func requireUser(gate string, users UserLookup, l *zap.Logger, allow func(*domain.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := Email(c)
		if !ok {
			reject(c, l, gate, "unauthenticated", resp.CodeUnauthorized)
			return
		}
		u, err := users.Lookup(c.Request.Context(), email)
		if err != nil {
			l.Error("authz lookup failed", zap.String("gate", gate), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
			return
		}
		if u == nil {
			reject(c, l, gate, "unknown_user", resp.CodeForbidden)
			return
		}
		if !allow(u) {
			reject(c, l, gate, "role", resp.CodeForbidden)
			return
		}
		c.Next()
	}
}
