// Package memstore 进程内集合实现：本地开发（db.driver=memory）和测试用
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/store"
	"outdoor-furniture/pkg/utils"
)

type Collection[T any] struct {
	mu     sync.RWMutex
	docs   []T
	unique [][]string
}

var _ domain.Collection[domain.User] = (*Collection[domain.User])(nil)

// New unique 为额外的唯一键组合；"id" 始终唯一
func New[T any](unique ...[]string) *Collection[T] {
	return &Collection[T]{unique: append([][]string{{"id"}}, unique...)}
}

func NewStore() domain.Store {
	return domain.Store{
		Users:     New[domain.User]([]string{"email"}),
		Purchases: New[domain.Purchase]([]string{"service_name", "email"}),
		Products:  New[domain.Product](),
	}
}

func (c *Collection[T]) Find(_ context.Context, f domain.Filter) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0)
	for i := range c.docs {
		if store.Match(&c.docs[i], f) {
			out = append(out, c.docs[i])
		}
	}
	return out, nil
}

func (c *Collection[T]) FindOne(_ context.Context, f domain.Filter) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(f); i >= 0 {
		doc := c.docs[i]
		return &doc, nil
	}
	return nil, nil
}

func (c *Collection[T]) InsertOne(_ context.Context, doc *T) error {
	if doc == nil {
		return fmt.Errorf("memstore: nil document")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(*doc)
}

func (c *Collection[T]) UpdateOne(_ context.Context, f domain.Filter, u domain.Update, upsert bool) (domain.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(f); i >= 0 {
		doc := c.docs[i]
		for k, v := range u {
			if err := store.Set(&doc, k, v); err != nil {
				return domain.UpdateResult{}, err
			}
		}
		c.docs[i] = doc
		return domain.UpdateResult{Matched: 1, Modified: 1}, nil
	}
	if !upsert {
		return domain.UpdateResult{}, nil
	}

	// upsert：filter + update 拼出新文档
	var doc T
	for _, m := range []map[string]any{f, u} {
		for k, v := range m {
			if err := store.Set(&doc, k, v); err != nil {
				return domain.UpdateResult{}, err
			}
		}
	}
	id, _ := store.Get(&doc, "id")
	if s, _ := id.(string); s == "" {
		_ = store.Set(&doc, "id", utils.NewID())
	}
	if err := c.insertLocked(doc); err != nil {
		return domain.UpdateResult{}, err
	}
	id, _ = store.Get(&doc, "id")
	return domain.UpdateResult{UpsertedID: fmt.Sprint(id)}, nil
}

func (c *Collection[T]) DeleteOne(_ context.Context, f domain.Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(f)
	if i < 0 {
		return 0, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return 1, nil
}

// Len 测试辅助
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection[T]) index(f domain.Filter) int {
	for i := range c.docs {
		if store.Match(&c.docs[i], f) {
			return i
		}
	}
	return -1
}

// insertLocked 唯一键里有空串的组合不参与唯一校验，与 SQL 的 NULL、mongo 的部分索引一致
func (c *Collection[T]) insertLocked(doc T) error {
	for _, keys := range c.unique {
		f := make(map[string]any, len(keys))
		for _, k := range keys {
			v, ok := store.Get(&doc, k)
			if !ok {
				return fmt.Errorf("memstore: unique key %q not on %T", k, doc)
			}
			f[k] = v
		}
		if hasEmpty(f) {
			continue
		}
		if c.index(f) >= 0 {
			return domain.ErrDuplicate
		}
	}
	c.docs = append(c.docs, doc)
	return nil
}

func hasEmpty(f map[string]any) bool {
	for _, v := range f {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String && rv.Len() == 0 {
			return true
		}
	}
	return false
}
