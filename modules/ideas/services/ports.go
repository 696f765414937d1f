package services

import "context"

// Side-effect collaborators consumed by the workflow facade. The facade
// is the only layer that touches them, so every external effect of an
// operation is enumerable here.

// AuditSink appends to the durable audit trail. It shares the operation's
// transaction: a failed audit write rolls the state change back.
type AuditSink interface {
	Record(ctx context.Context, actorID uint, action, subjectType string, subjectID uint, metadata map[string]any) error
}

// Notifier delivers a typed, titled message to a user. Fire-and-forget:
// implementations log failures and never surface them.
type Notifier interface {
	Notify(ctx context.Context, userID uint, severity, title, message, actionURL string)
}

// RewardLedger credits points with a reason. HasReceived backs one-off
// bonuses such as the first-collaboration award.
type RewardLedger interface {
	Award(ctx context.Context, userID uint, amount int, reason string) error
	HasReceived(ctx context.Context, userID uint, reason string) (bool, error)
}
