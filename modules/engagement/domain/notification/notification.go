package notification

import (
	"context"
	"time"
)

const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
)

type Notification struct {
	ID        uint
	UserID    uint
	Severity  string
	Title     string
	Message   string
	ActionURL *string
	ReadAt    *time.Time
	CreatedAt time.Time
}

type FindParams struct {
	UserID     uint
	UnreadOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, entity *Notification) error
	List(ctx context.Context, params *FindParams) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error
}
