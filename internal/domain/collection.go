package domain

import (
	"context"
	"errors"
)

// ErrDuplicate 唯一约束冲突
var ErrDuplicate = errors.New("duplicate record")

// Filter / Update 的 key 统一用字段名（gorm 列名 == bson 名，"id" 对应 mongo 的 "_id"）
type (
	Filter map[string]any
	Update map[string]any
)

type UpdateResult struct {
	Matched    int64
	Modified   int64
	UpsertedID string
}

// Collection 文档集合的最小接口，gorm / mongo / 内存各有一份实现
type Collection[T any] interface {
	Find(ctx context.Context, f Filter) ([]T, error)
	// FindOne 查不到返回 nil, nil
	FindOne(ctx context.Context, f Filter) (*T, error)
	// InsertOne 命中唯一约束时返回 ErrDuplicate
	InsertOne(ctx context.Context, doc *T) error
	UpdateOne(ctx context.Context, f Filter, u Update, upsert bool) (UpdateResult, error)
	DeleteOne(ctx context.Context, f Filter) (int64, error)
}

// Store 三个集合打包注入
type Store struct {
	Users     Collection[User]
	Purchases Collection[Purchase]
	Products  Collection[Product]
}
