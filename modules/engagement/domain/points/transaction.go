package points

import (
	"context"
	"time"
)

// Transaction is one credit or debit in a user's point ledger.
type Transaction struct {
	ID        uint
	UserID    uint
	Points    int
	Reason    string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, entity *Transaction) error
	// HasReason reports whether the user already holds a transaction with
	// the given reason. Used for one-off bonuses.
	HasReason(ctx context.Context, userID uint, reason string) (bool, error)
	BalanceByUser(ctx context.Context, userID uint) (int, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*Transaction, error)
}
