package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outdoor-furniture/internal/domain"
)

// 集合名沿用原 mongo 库
const (
	UsersCollection     = "users"
	PurchasesCollection = "buying"
	ProductsCollection  = "products"
)

type Collection[T any] struct{ coll *mongo.Collection }

var _ domain.Collection[domain.User] = (*Collection[domain.User])(nil)

func New[T any](coll *mongo.Collection) *Collection[T] { return &Collection[T]{coll: coll} }

func NewStore(db *mongo.Database) domain.Store {
	return domain.Store{
		Users:     New[domain.User](db.Collection(UsersCollection)),
		Purchases: New[domain.Purchase](db.Collection(PurchasesCollection)),
		Products:  New[domain.Product](db.Collection(ProductsCollection)),
	}
}

// EnsureIndexes 唯一索引是 buying 去重的依据，启动时必须建好
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			// 按 id 提权 upsert 出来的记录没有邮箱，不参与唯一约束
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().
				SetName("uq_users_email").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}})},
		},
		PurchasesCollection: {
			{Keys: bson.D{{Key: "service_name", Value: 1}, {Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "section", Value: 1}, {Key: "service_id", Value: 1}}},
			{Keys: bson.D{{Key: "seller_email", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// toBSON "id" -> "_id"
func toBSON(m map[string]any) bson.M {
	out := bson.M{}
	for k, v := range m {
		if k == "id" {
			k = "_id"
		}
		out[k] = v
	}
	return out
}

func (c *Collection[T]) Find(ctx context.Context, f domain.Filter) ([]T, error) {
	cur, err := c.coll.Find(ctx, toBSON(f))
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, f domain.Filter) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, toBSON(f)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, f domain.Filter, u domain.Update, upsert bool) (domain.UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, toBSON(f), bson.M{"$set": toBSON(u)}, options.Update().SetUpsert(upsert))
	if err != nil {
		return domain.UpdateResult{}, err
	}
	out := domain.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
	if res.UpsertedID != nil {
		out.UpsertedID = fmt.Sprint(res.UpsertedID)
	}
	return out, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, f domain.Filter) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, toBSON(f))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
