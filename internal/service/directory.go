package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/pkg/utils"
)

// Directory 用户目录：按邮箱查角色 / 分类
type Directory struct {
	users domain.Collection[domain.User]
	log   *zap.Logger
}

func NewDirectory(users domain.Collection[domain.User], l *zap.Logger) *Directory {
	if l == nil {
		l = zap.NewNop()
	}
	return &Directory{users: users, log: l}
}

// NewUser POST /users 的入参
type NewUser struct {
	Email    string `json:"email"    binding:"required,email,max=191"`
	Name     string `json:"name"     binding:"omitempty,max=64"`
	Photo    string `json:"photo"    binding:"omitempty,max=512"`
	Category string `json:"category" binding:"omitempty,oneof=Seller User"`
}

// Lookup 查不到返回 nil, nil；脏数据里的未知角色按未设置处理
func (d *Directory) Lookup(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	u, err := d.users.FindOne(ctx, domain.Filter{"email": email})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	d.sanitize(u)
	return u, nil
}

func (d *Directory) sanitize(u *domain.User) {
	if r, err := domain.ParseRole(string(u.Role)); err != nil {
		d.log.Warn("unknown role on user record", zap.String("email", u.Email), zap.String("role", string(u.Role)))
		u.Role = domain.RoleNone
	} else {
		u.Role = r
	}
	if c, err := domain.ParseCategory(string(u.Category)); err != nil {
		d.log.Warn("unknown category on user record", zap.String("email", u.Email), zap.String("category", string(u.Category)))
		u.Category = domain.CategoryNone
	} else {
		u.Category = c
	}
}

func (d *Directory) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := d.Lookup(ctx, email)
	return u.IsAdmin(), err
}

func (d *Directory) IsSeller(ctx context.Context, email string) (bool, error) {
	u, err := d.Lookup(ctx, email)
	return u.IsSeller(), err
}

func (d *Directory) IsBuyer(ctx context.Context, email string) (bool, error) {
	u, err := d.Lookup(ctx, email)
	return u.IsBuyer(), err
}

func (d *Directory) List(ctx context.Context) ([]domain.User, error) {
	us, err := d.users.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range us {
		d.sanitize(&us[i])
	}
	return us, nil
}

// Create 邮箱已存在时 created=false 并返回已有记录
func (d *Directory) Create(ctx context.Context, in NewUser) (u *domain.User, created bool, err error) {
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	u = &domain.User{
		ID:        utils.NewID(),
		Email:     normalizeEmail(in.Email),
		Name:      strings.TrimSpace(in.Name),
		Photo:     strings.TrimSpace(in.Photo),
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = d.users.InsertOne(ctx, u)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		existing, lerr := d.Lookup(ctx, u.Email)
		if lerr != nil {
			return nil, false, lerr
		}
		return existing, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

// touch 显式带上 updated_at，gorm 的 map 更新本来就会写它，其他实现保持一致
func touch(u domain.Update) domain.Update {
	u["updated_at"] = time.Now()
	return u
}

// PromoteToAdmin 按 id upsert role=admin，除 updated_at 外其余字段不动
func (d *Directory) PromoteToAdmin(ctx context.Context, id string) (domain.UpdateResult, error) {
	res, err := d.users.UpdateOne(ctx, domain.Filter{"id": id}, touch(domain.Update{"role": domain.RoleAdmin}), true)
	if err != nil {
		return res, fmt.Errorf("promote user %s: %w", id, err)
	}
	d.log.Info("user promoted to admin", zap.String("id", id), zap.Int64("matched", res.Matched), zap.String("upserted", res.UpsertedID))
	return res, nil
}

// PromoteEmailToAdmin 运维命令用：按邮箱提权，用户必须已存在
func (d *Directory) PromoteEmailToAdmin(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	res, err := d.users.UpdateOne(ctx, domain.Filter{"email": email}, touch(domain.Update{"role": domain.RoleAdmin}), false)
	if err != nil {
		return false, fmt.Errorf("promote %s: %w", email, err)
	}
	return res.Matched > 0, nil
}

// SetCategory 运维命令用；空邮箱不匹配任何人，免得改到按 id 提权出来的无邮箱记录
func (d *Directory) SetCategory(ctx context.Context, email string, c domain.Category) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	res, err := d.users.UpdateOne(ctx, domain.Filter{"email": email}, touch(domain.Update{"category": c}), false)
	if err != nil {
		return false, fmt.Errorf("set category for %s: %w", email, err)
	}
	return res.Matched > 0, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
