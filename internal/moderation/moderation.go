// Package moderation implements the three admin approval queues: listings,
// reviews and agent verification. Approving flips a flag and is idempotent;
// rejecting deletes the record for good.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/store"
)

var (
	// ErrNotFound is store.ErrNotFound so either can be matched.
	ErrNotFound = store.ErrNotFound
	ErrNotAgent = errors.New("profile is not an agent")
)

const (
	GateListing = "listing"
	GateReview  = "review"
	GateAgent   = "agent"

	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Observer is told about every successful decision.
type Observer interface {
	ObserveDecision(gate, decision string)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(string, string) {}

// queue is the approve/reject contract shared by listings and reviews.
type queue[T any] struct {
	db      *gorm.DB
	gate    string
	preload []string
	log     *logrus.Logger
	obs     Observer
}

func (q *queue[T]) unapproved(ctx context.Context) ([]T, error) {
	var recs []T
	tx := q.db.WithContext(ctx)
	for _, p := range q.preload {
		tx = tx.Preload(p)
	}
	if err := tx.Where("approved = ?", false).Order("created_at ASC, id ASC").Find(&recs).Error; err != nil {
		logging.Error(q.log, "moderation", "ListUnapproved", q.gate, nil, err)
		return nil, fmt.Errorf("list unapproved %ss: %w", q.gate, err)
	}
	return recs, nil
}

func (q *queue[T]) approve(ctx context.Context, id uint) error {
	if err := store.Update[T](ctx, q.db, id, map[string]any{"approved": true}); err != nil {
		return q.fail("Approve", id, err)
	}
	q.obs.ObserveDecision(q.gate, DecisionApprove)
	q.log.WithFields(logrus.Fields{"gate": q.gate, "id": id}).Info("approved")
	return nil
}

func (q *queue[T]) reject(ctx context.Context, id uint) error {
	if err := store.Delete[T](ctx, q.db, id); err != nil {
		return q.fail("Reject", id, err)
	}
	q.obs.ObserveDecision(q.gate, DecisionReject)
	q.log.WithFields(logrus.Fields{"gate": q.gate, "id": id}).Info("rejected")
	return nil
}

func (q *queue[T]) fail(op string, id uint, err error) error {
	if !errors.Is(err, ErrNotFound) {
		logging.Error(q.log, "moderation", op, q.gate, map[string]any{"id": id}, err)
	}
	return fmt.Errorf("%s %s %d: %w", op, q.gate, id, err)
}

// Option configures a gate.
type Option func(*options)

type options struct {
	log *logrus.Logger
	obs Observer
}

func WithLogger(l *logrus.Logger) Option { return func(o *options) { o.log = l } }
func WithObserver(obs Observer) Option   { return func(o *options) { o.obs = obs } }

func buildOptions(opts []Option) options {
	o := options{log: logging.Discard(), obs: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	if o.obs == nil {
		o.obs = nopObserver{}
	}
	return o
}
