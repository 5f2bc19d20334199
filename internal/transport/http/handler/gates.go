package handler

import "github.com/gin-gonic/gin"

// Gates 路由上按需组合的鉴权中间件
type Gates struct {
	Authenticate  gin.HandlerFunc
	RequireAdmin  gin.HandlerFunc
	RequireSeller gin.HandlerFunc
}

func chain(hs ...gin.HandlerFunc) []gin.HandlerFunc { return hs }
