package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// NewCtx stores the logger in the returned context
func NewCtx(ctx context.Context, logger *logrus.Entry) (context.Context, *logrus.Entry) {
	ctx = context.WithValue(ctx, ctxKey{}, logger)

	return ctx, entryWithCtx(ctx, logger)
}

// FromCtx returns the logger stored in ctx, or the global logger
func FromCtx(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(ctxKey{}).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(Log()).WithContext(ctx)
	}

	return entryWithCtx(ctx, logger)
}

// CtxWithFields derives a context whose logger carries the given fields
func CtxWithFields(ctx context.Context, fields logrus.Fields) (context.Context, *logrus.Entry) {
	return NewCtx(ctx, FromCtx(ctx).WithFields(fields))
}

// CtxWithPrefix derives a context whose logger carries the given prefix
func CtxWithPrefix(ctx context.Context, prefix string) (context.Context, *logrus.Entry) {
	return CtxWithFields(ctx, logrus.Fields{"prefix": prefix})
}

func entryWithCtx(ctx context.Context, logger *logrus.Entry) *logrus.Entry {
	loggerCopy := *logger
	loggerCopy.Context = ctx

	return &loggerCopy
}
