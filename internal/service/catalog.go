package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"outdoor-furniture/internal/core/cache"
	"outdoor-furniture/internal/domain"
	"outdoor-furniture/pkg/utils"
)

// Catalog 商品读写；只读分区走缓存，卖家分区不缓存
type Catalog struct {
	products domain.Collection[domain.Product]
	cache    *cache.Cache
	ttl      time.Duration
}

func NewCatalog(products domain.Collection[domain.Product], c *cache.Cache, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Catalog{products: products, cache: c, ttl: ttl}
}

// NewProduct POST /seller/addProduct 的入参
type NewProduct struct {
	ServiceID   string  `json:"service_id"  binding:"omitempty,max=64"`
	Name        string  `json:"name"        binding:"required,max=128"`
	Image       string  `json:"image"       binding:"omitempty,max=512"`
	Price       float64 `json:"price"       binding:"gte=0"`
	Description string  `json:"description" binding:"omitempty,max=4000"`
	Category    string  `json:"category"    binding:"omitempty,max=64"`
	Rating      float64 `json:"rating"      binding:"gte=0,lte=5"`
}

func (s *Catalog) find(ctx context.Context, key string, f domain.Filter) ([]domain.Product, error) {
	out, err := cache.GetOrLoadJSON(s.cache, ctx, key, s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.Find(ctx, f)
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

func (s *Catalog) ListSection(ctx context.Context, sec domain.Section) ([]domain.Product, error) {
	return s.find(ctx, "section:"+string(sec), domain.Filter{"section": sec})
}

// ListByService /allProduct/:id
func (s *Catalog) ListByService(ctx context.Context, serviceID string) ([]domain.Product, error) {
	return s.find(ctx, "service:"+serviceID, domain.Filter{"section": domain.SectionAll, "service_id": serviceID})
}

// Get 查不到返回 nil, nil
func (s *Catalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindOne(ctx, domain.Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *Catalog) ListBySeller(ctx context.Context, email string) ([]domain.Product, error) {
	out, err := s.products.Find(ctx, domain.Filter{"section": domain.SectionSeller, "seller_email": normalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	return out, nil
}

func (s *Catalog) CreateSellerProduct(ctx context.Context, sellerEmail string, in NewProduct) (*domain.Product, error) {
	p := &domain.Product{
		ID:          utils.NewID(),
		Section:     domain.SectionSeller,
		ServiceID:   strings.TrimSpace(in.ServiceID),
		Name:        strings.TrimSpace(in.Name),
		Image:       strings.TrimSpace(in.Image),
		Price:       in.Price,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Rating:      in.Rating,
		SellerEmail: normalizeEmail(sellerEmail),
		CreatedAt:   time.Now(),
	}
	if err := s.products.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// DeleteSellerProduct 只能删卖家分区的商品
func (s *Catalog) DeleteSellerProduct(ctx context.Context, id string) (bool, error) {
	n, err := s.products.DeleteOne(ctx, domain.Filter{"id": id, "section": domain.SectionSeller})
	if err != nil {
		return false, fmt.Errorf("delete product %s: %w", id, err)
	}
	return n > 0, nil
}
