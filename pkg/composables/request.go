package composables

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/constants"
)

var (
	ErrNoLogger = errors.New("logger not found")
	ErrNoActor  = errors.New("acting user not found in context")
)

// WithActorID returns a new context carrying the acting user's identifier.
func WithActorID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, constants.ActorKey, userID)
}

// UseActorID returns the acting user's identifier from the context.
func UseActorID(ctx context.Context) (uint, error) {
	v := ctx.Value(constants.ActorKey)
	if v == nil {
		return 0, ErrNoActor
	}
	return v.(uint), nil
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger from the context, falling back to the
// standard logger when none was attached.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger.(*logrus.Entry)
}
