package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/transport/http/ez"
	mdw "outdoor-furniture/internal/transport/http/middleware"
	resp "outdoor-furniture/internal/transport/http/response"
)

type UserHandler struct {
	dir    *service.Directory
	issuer *service.TokenIssuer
	gates  Gates
}

func NewUserHandler(dir *service.Directory, issuer *service.TokenIssuer, g Gates) *UserHandler {
	return &UserHandler{dir: dir, issuer: issuer, gates: g}
}

func (h *UserHandler) Priority() int { return 10 }

type emailQuery struct {
	Email string `form:"email" binding:"required,email"`
}

type emailURI struct {
	Email string `uri:"email" binding:"required,max=191"`
}

type idURI struct {
	ID string `uri:"id" binding:"required,max=64"`
}

type tokenOut struct {
	AccessToken string `json:"accessToken"`
}

type createUserOut struct {
	User          *domain.User `json:"user"`
	AlreadyExists bool         `json:"alreadyExists"`
}

type promoteOut struct {
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

func (h *UserHandler) MountAPI(e ez.EZ) {
	// GET /jwt?email= 目录里有这个邮箱才签发
	ez.Register(e, ez.Action[emailQuery, tokenOut]{
		Method: http.MethodGet,
		Path:   "/jwt",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *emailQuery) (tokenOut, error) {
			tok, err := h.issuer.Issue(c.Request.Context(), in.Email)
			if errors.Is(err, service.ErrUnknownUser) {
				return tokenOut{}, &ez.AErr{
					Code: resp.CodeForbidden,
					Msg:  mdw.CodeMsg(resp.CodeForbidden),
					Data: tokenOut{},
				}
			}
			if err != nil {
				return tokenOut{}, ez.Internal("issue token failed", err)
			}
			return tokenOut{AccessToken: tok}, nil
		},
	})

	ez.Register(e, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.dir.List(c.Request.Context())
		},
	})

	ez.Register(e, ez.Action[service.NewUser, createUserOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.NewUser) (createUserOut, error) {
			u, created, err := h.dir.Create(c.Request.Context(), *in)
			if err != nil {
				return createUserOut{}, err
			}
			return createUserOut{User: u, AlreadyExists: !created}, nil
		},
	})

	// 角色探测：公开接口，未知邮箱返回 false
	h.roleCheck(e, "/users/admin/:email", "admin", h.dir.IsAdmin)
	h.roleCheck(e, "/users/seller/:email", "seller", h.dir.IsSeller)
	h.roleCheck(e, "/users/buyer/:email", "buyer", h.dir.IsBuyer)

	ez.Register(e, ez.Action[idURI, promoteOut]{
		Method: http.MethodPut,
		Path:   "/users/admin/:id",
		Binder: ez.BindURI,
		Gates:  chain(h.gates.Authenticate, h.gates.RequireAdmin),
		Handler: func(c *gin.Context, in *idURI) (promoteOut, error) {
			res, err := h.dir.PromoteToAdmin(c.Request.Context(), in.ID)
			if err != nil {
				return promoteOut{}, err
			}
			return promoteOut{MatchedCount: res.Matched, ModifiedCount: res.Modified, UpsertedID: res.UpsertedID}, nil
		},
	})
}

func (h *UserHandler) roleCheck(e ez.EZ, path, key string, check func(context.Context, string) (bool, error)) {
	ez.Register(e, ez.Action[emailURI, map[string]bool]{
		Method: http.MethodGet,
		Path:   path,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *emailURI) (map[string]bool, error) {
			ok, err := check(c.Request.Context(), in.Email)
			if err != nil {
				return nil, err
			}
			return map[string]bool{key: ok}, nil
		},
	})
}
