package xcontext

import (
	"context"

	"github.com/arbuzhub/casino-backend/config"
	"github.com/arbuzhub/casino-backend/pkg/logger"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type (
	configsKey   struct{}
	loggerKey    struct{}
	dbKey        struct{}
	txKey        struct{}
	userIDKey    struct{}
	snowflakeKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		panic("no configs in context")
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.INFO)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if one is active, otherwise the root
// database handle.
func DB(ctx context.Context) *gorm.DB {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok && holder.tx != nil {
		return holder.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("no database in context")
	}

	return db
}

type txHolder struct {
	tx *gorm.DB
}

// WithDBTransaction begins a transaction and makes DB() return it. Commit or
// rollback with WithCommitDBTransaction / WithRollbackDBTransaction; rollback
// after a commit is a no-op, so it is safe to defer.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txHolder{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(txKey{}).(*txHolder)
	if ok && holder.tx != nil {
		holder.tx.Commit()
		holder.tx = nil
	}

	return ctx
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(txKey{}).(*txHolder)
	if ok && holder.tx != nil {
		holder.tx.Rollback()
		holder.tx = nil
	}

	return ctx
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, ok := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	if !ok {
		node, err := snowflake.NewNode(0)
		if err != nil {
			panic(err)
		}

		return node
	}

	return node
}
