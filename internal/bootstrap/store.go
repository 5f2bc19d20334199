package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"outdoor-furniture/internal/core/config"
	"outdoor-furniture/internal/core/database"
	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/store/gormstore"
	"outdoor-furniture/internal/store/memstore"
	"outdoor-furniture/internal/store/mongostore"
)

// Store 打开好的存储；Ping 用于 /health，Close 在退出时调用
type Store struct {
	domain.Store
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

func noop(context.Context) error { return nil }

// OpenStore 按 db.driver 选择实现；migrate 为 true 时建表/建索引
func OpenStore(ctx context.Context, c config.DB, l *zap.Logger, migrate bool) (*Store, error) {
	switch c.Driver {
	case "memory":
		l.Warn("using in-memory store, data is lost on exit")
		return &Store{Store: memstore.NewStore(), Ping: noop, Close: noop}, nil

	case "mongo":
		db, disconnect, err := database.NewMongo(ctx, database.MongoOpts{
			URI:         c.DSN,
			Database:    c.Database,
			Username:    c.Username,
			Password:    c.Password,
			MaxPoolSize: uint64(max(0, c.MaxOpenConns)),
		})
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if migrate {
			if err := mongostore.EnsureIndexes(ctx, db); err != nil {
				_ = disconnect(ctx)
				return nil, fmt.Errorf("mongo indexes: %w", err)
			}
			l.Info("mongo indexes ensured")
		}
		return &Store{
			Store: mongostore.NewStore(db),
			Ping:  func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
			Close: disconnect,
		}, nil

	case "postgres", "mysql":
		db, err := database.NewGorm(database.Opts{
			Driver:             c.Driver,
			DSN:                c.DSN,
			Username:           c.Username,
			Password:           c.Password,
			MaxOpenConns:       c.MaxOpenConns,
			MaxIdleConns:       c.MaxIdleConns,
			ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
			LogLevel:           c.LogLevel,
			Log:                l,
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := gormstore.Migrate(db); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		return &Store{
			Store: gormstore.NewStore(db),
			Ping:  sqlDB.PingContext,
			Close: func(context.Context) error { return sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", database.ErrUnsupportedDriver, c.Driver)
}

// ConnectTimeout 启动阶段连接存储的超时
const ConnectTimeout = 15 * time.Second
