package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/transport/http/ez"
	mdw "outdoor-furniture/internal/transport/http/middleware"
)

type PurchaseHandler struct {
	svc   *service.Purchases
	gates Gates
}

func NewPurchaseHandler(svc *service.Purchases, g Gates) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, gates: g}
}

func (h *PurchaseHandler) Priority() int { return 20 }

// buyingQuery 不做格式校验：缺失或不合法的邮箱都按越权处理，返回 403
type buyingQuery struct {
	Email string `form:"email"`
}

func (h *PurchaseHandler) MountAPI(e ez.EZ) {
	// 只能查自己的购买记录
	ez.Register(e, ez.Action[buyingQuery, []domain.Purchase]{
		Method: http.MethodGet,
		Path:   "/buying",
		Binder: ez.BindQuery,
		Gates:  chain(h.gates.Authenticate),
		Handler: func(c *gin.Context, in *buyingQuery) ([]domain.Purchase, error) {
			owner, _ := mdw.Email(c)
			email := strings.TrimSpace(in.Email)
			if email == "" || !strings.EqualFold(email, strings.TrimSpace(owner)) {
				return nil, ez.Forbidden(mdw.CodeMsg(http.StatusForbidden))
			}
			return h.svc.ListByOwner(c.Request.Context(), email)
		},
	})

	ez.Register(e, ez.Action[service.NewPurchase, service.PurchaseResult]{
		Method: http.MethodPost,
		Path:   "/buying",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.NewPurchase) (service.PurchaseResult, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
}
