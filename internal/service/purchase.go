package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/pkg/utils"
)

type Purchases struct {
	coll domain.Collection[domain.Purchase]
}

func NewPurchases(coll domain.Collection[domain.Purchase]) *Purchases {
	return &Purchases{coll: coll}
}

// NewPurchase POST /buying 的入参
type NewPurchase struct {
	ServiceName string  `json:"service_name" binding:"required,max=191"`
	ServiceID   string  `json:"service_id"   binding:"omitempty,max=64"`
	Email       string  `json:"email"        binding:"required,email,max=191"`
	Name        string  `json:"name"         binding:"omitempty,max=64"`
	Price       float64 `json:"price"        binding:"gte=0"`
	Image       string  `json:"image"        binding:"omitempty,max=512"`
	Quantity    int     `json:"quantity"     binding:"omitempty,gte=1"`
}

type PurchaseResult struct {
	AlreadyPurchased bool   `json:"alreadyPurchased"`
	InsertedID       string `json:"insertedId,omitempty"`
}

func (s *Purchases) ListByOwner(ctx context.Context, email string) ([]domain.Purchase, error) {
	out, err := s.coll.Find(ctx, domain.Filter{"email": normalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}

// Create 依赖 (service_name, email) 唯一约束，不做先查后插
func (s *Purchases) Create(ctx context.Context, in NewPurchase) (PurchaseResult, error) {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	p := &domain.Purchase{
		ID:          utils.NewID(),
		ServiceName: strings.TrimSpace(in.ServiceName),
		ServiceID:   strings.TrimSpace(in.ServiceID),
		Email:       normalizeEmail(in.Email),
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Quantity:    qty,
		CreatedAt:   time.Now(),
	}
	err := s.coll.InsertOne(ctx, p)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return PurchaseResult{AlreadyPurchased: true}, nil
	case err != nil:
		return PurchaseResult{}, fmt.Errorf("create purchase: %w", err)
	}
	return PurchaseResult{InsertedID: p.ID}, nil
}
