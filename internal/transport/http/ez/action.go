package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mdw "outdoor-furniture/internal/transport/http/middleware"
	resp "outdoor-furniture/internal/transport/http/response"
)

// Binder 入参绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 请求体 JSON
	BindQuery Binder = "query" // ?a=b
	BindURI   Binder = "uri"   // 路径参数 :id
	BindNone  Binder = "none"
)

// AErr 统一错误对象，Code 同时作为 HTTP 状态码
type AErr struct {
	Code int
	Msg  string
	Err  error
	Data any
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Gates   []gin.HandlerFunc // 鉴权中间件，按顺序执行
	Handler func(c *gin.Context, in *I) (O, error)
}

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Handle 挂原生 gin handler，如 /metrics
func (e EZ) Handle(method, path string, hs ...gin.HandlerFunc) {
	e.g.Handle(strings.ToUpper(method), path, hs...)
}

// Register 在当前分组下注册动作
func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(resp.Status(resp.CodeTooLarge), resp.Error(resp.CodeTooLarge, "request body too large"))
				return
			}
			c.JSON(resp.Status(resp.CodeBadRequest), resp.Error(resp.CodeBadRequest, err.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	handlers := append(append([]gin.HandlerFunc{}, a.Gates...), h)
	e.g.Handle(strings.ToUpper(a.Method), a.Path, handlers...)
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindURI:
		return c.ShouldBindUri(in)
	}
	return nil
}

func (e EZ) fail(c *gin.Context, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: resp.CodeServerError, Err: err}
	}
	if ae.Code >= 500 {
		_ = c.Error(err)
		e.log.Error("action failed",
			zap.String("route", c.FullPath()),
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.Error(err),
		)
		// 不把底层错误暴露给客户端
		msg := ae.Msg
		if msg == "" {
			msg = "internal error"
		}
		c.JSON(resp.Status(ae.Code), resp.ErrorWith(ae.Code, msg, ae.Data))
		return
	}
	c.JSON(resp.Status(ae.Code), resp.ErrorWith(ae.Code, ae.Error(), ae.Data))
}
