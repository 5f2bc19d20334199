package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/transport/http/ez"
	mdw "outdoor-furniture/internal/transport/http/middleware"
)

type CatalogHandler struct {
	svc   *service.Catalog
	gates Gates
}

func NewCatalogHandler(svc *service.Catalog, g Gates) *CatalogHandler {
	return &CatalogHandler{svc: svc, gates: g}
}

func (h *CatalogHandler) Priority() int { return 30 }

type deleteOut struct {
	DeletedCount int64 `json:"deletedCount"`
}

func (h *CatalogHandler) MountAPI(e ez.EZ) {
	// 只读分区
	h.section(e, "/furniture", domain.SectionFurniture)
	h.section(e, "/allProduct", domain.SectionAll)
	h.section(e, "/trandingFurniture", domain.SectionTrending)
	h.section(e, "/newDesign", domain.SectionNewDesign)

	ez.Register(e, ez.Action[idURI, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/allProduct/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) ([]domain.Product, error) {
			return h.svc.ListByService(c.Request.Context(), in.ID)
		},
	})

	// 查不到时 data 为 null
	ez.Register(e, ez.Action[idURI, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/singleProduct/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (*domain.Product, error) {
			return h.svc.Get(c.Request.Context(), in.ID)
		},
	})

	// 卖家
	ez.Register(e, ez.Action[struct{}, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/seller/addProduct",
		Binder: ez.BindNone,
		Gates:  chain(h.gates.Authenticate, h.gates.RequireSeller),
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Product, error) {
			email, _ := mdw.Email(c)
			return h.svc.ListBySeller(c.Request.Context(), email)
		},
	})

	ez.Register(e, ez.Action[service.NewProduct, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/seller/addProduct",
		Binder: ez.BindJSON,
		Gates:  chain(h.gates.Authenticate),
		Handler: func(c *gin.Context, in *service.NewProduct) (*domain.Product, error) {
			email, _ := mdw.Email(c)
			return h.svc.CreateSellerProduct(c.Request.Context(), email, *in)
		},
	})

	ez.Register(e, ez.Action[idURI, deleteOut]{
		Method: http.MethodDelete,
		Path:   "/seller/addProduct/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (deleteOut, error) {
			ok, err := h.svc.DeleteSellerProduct(c.Request.Context(), in.ID)
			if err != nil {
				return deleteOut{}, err
			}
			if !ok {
				return deleteOut{}, nil
			}
			return deleteOut{DeletedCount: 1}, nil
		},
	})
}

func (h *CatalogHandler) section(e ez.EZ, path string, sec domain.Section) {
	ez.Register(e, ez.Action[struct{}, []domain.Product]{
		Method: http.MethodGet,
		Path:   path,
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Product, error) {
			return h.svc.ListSection(c.Request.Context(), sec)
		},
	})
}
