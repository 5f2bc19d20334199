package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/store"
	"outdoor-furniture/pkg/utils"
)

// Collection 用一张表模拟文档集合；Filter 的 key 就是列名
type Collection[T any] struct{ db *gorm.DB }

var _ domain.Collection[domain.User] = (*Collection[domain.User])(nil)

func New[T any](db *gorm.DB) *Collection[T] { return &Collection[T]{db: db} }

func NewStore(db *gorm.DB) domain.Store {
	return domain.Store{
		Users:     New[domain.User](db),
		Purchases: New[domain.Purchase](db),
		Products:  New[domain.Product](db),
	}
}

// Migrate 建表 + 唯一索引
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Purchase{}, &domain.Product{})
}

func (c *Collection[T]) where(ctx context.Context, f domain.Filter) *gorm.DB {
	tx := c.db.WithContext(ctx).Model(new(T))
	if len(f) > 0 {
		tx = tx.Where(map[string]any(f))
	}
	return tx
}

func (c *Collection[T]) Find(ctx context.Context, f domain.Filter) ([]T, error) {
	out := make([]T, 0)
	if err := c.where(ctx, f).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, f domain.Filter) (*T, error) {
	var doc T
	err := c.where(ctx, f).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) error {
	if err := c.db.WithContext(ctx).Create(doc).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, f domain.Filter, u domain.Update, upsert bool) (domain.UpdateResult, error) {
	res := c.where(ctx, f).Limit(1).Updates(map[string]any(u))
	if res.Error != nil {
		return domain.UpdateResult{}, res.Error
	}
	if res.RowsAffected > 0 || !upsert {
		return domain.UpdateResult{Matched: res.RowsAffected, Modified: res.RowsAffected}, nil
	}

	// 没改到行：mysql 在值未变化时也返回 0，先确认记录是否存在
	exists, err := c.FindOne(ctx, f)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if exists != nil {
		return domain.UpdateResult{Matched: 1}, nil
	}

	doc := new(T)
	for _, m := range []map[string]any{f, u} {
		for k, v := range m {
			if err := store.Set(doc, k, v); err != nil {
				return domain.UpdateResult{}, err
			}
		}
	}
	id, _ := store.Get(doc, "id")
	if s, _ := id.(string); s == "" {
		_ = store.Set(doc, "id", utils.NewID())
	}
	if err := c.InsertOne(ctx, doc); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return domain.UpdateResult{}, err
		}
		// 并发下另一个请求可能先插入了；只有按 filter 确实查得到才算命中
		again, ferr := c.FindOne(ctx, f)
		if ferr != nil {
			return domain.UpdateResult{}, ferr
		}
		if again == nil {
			return domain.UpdateResult{}, fmt.Errorf("upsert: %w", err)
		}
		return domain.UpdateResult{Matched: 1}, nil
	}
	id, _ = store.Get(doc, "id")
	return domain.UpdateResult{UpsertedID: fmt.Sprint(id)}, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, f domain.Filter) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("gormstore: refusing delete without filter")
	}
	res := c.db.WithContext(ctx).Where(map[string]any(f)).Limit(1).Delete(new(T))
	return res.RowsAffected, res.Error
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动没翻译错误时按报错文本兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
