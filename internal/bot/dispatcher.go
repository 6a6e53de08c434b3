// Package bot implements the conversation state machine behind the
// health-points LINE bot: the new-member registration flow, the
// account-linking flow, and point collection for health activities.
package bot

import (
	"context"
	"fmt"

	"github.com/chiaheng/health-linebot-go/internal/account"
	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
	"github.com/chiaheng/health-linebot-go/internal/replies"
	"github.com/chiaheng/health-linebot-go/internal/state"
)

// AccountService is the slice of the account client the dispatcher needs.
type AccountService interface {
	SearchMember(ctx context.Context, nationalID string) error
	LinkUser(ctx context.Context, nationalID, lineID string) error
	RegisterMember(ctx context.Context, name, nationalID, phone string) error
	AddPoint(ctx context.Context, counter account.Counter, lineID string) (int, error)
	Logout(ctx context.Context, lineID string) error
}

// Dispatcher routes inbound events through the per-user state machine.
// It is the sole writer of conversation records.
type Dispatcher struct {
	store   state.Store
	account AccountService
	replies *replies.Catalog
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Config holds the dispatcher's collaborators.
type Config struct {
	Store   state.Store
	Account AccountService
	Replies *replies.Catalog
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		store:   cfg.Store,
		account: cfg.Account,
		replies: cfg.Replies,
		log:     cfg.Logger.WithModule("bot"),
		metrics: cfg.Metrics,
	}
}

// Dispatch processes one event against the user's conversation record.
// The record is mutated in place and persisted before returning. The
// returned Result is never nil; a non-nil error means the state write
// failed and the record may be stale, the messages are still valid.
func (d *Dispatcher) Dispatch(ctx context.Context, conv *state.Conversation, input Input) (*Result, error) {
	switch in := input.(type) {
	case TextInput:
		return d.dispatchText(ctx, conv, in.Text)
	case ButtonInput:
		return d.dispatchPostback(ctx, conv, in.Data)
	default:
		return &Result{}, fmt.Errorf("unknown input type %T", input)
	}
}

// save persists the record; persistence failures are logged and
// surfaced but never block the reply.
func (d *Dispatcher) save(ctx context.Context, conv *state.Conversation) error {
	if err := d.store.Update(ctx, conv); err != nil {
		d.log.WithUserID(conv.UserID).WithError(err).Error("Failed to persist conversation state")
		return fmt.Errorf("persist conversation: %w", err)
	}
	return nil
}

func (d *Dispatcher) recordFlow(flow state.Flow, outcome string) {
	if d.metrics != nil {
		d.metrics.RecordFlowTransition(string(flow), outcome)
	}
}

func (d *Dispatcher) recordPoint(counter account.Counter) {
	if d.metrics != nil {
		d.metrics.RecordPointAdded(counter.Field)
	}
}
