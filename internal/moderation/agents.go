package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
)

// Invalidator drops cached authorization data for a user.
type Invalidator interface {
	Invalidate(userID uint)
}

// AgentGate lists every agent and lets an admin verify or remove them.
type AgentGate struct {
	db          *gorm.DB
	invalidator Invalidator
	log         *logrus.Logger
	obs         Observer
}

func NewAgentGate(db *gorm.DB, invalidator Invalidator, opts ...Option) *AgentGate {
	o := buildOptions(opts)
	return &AgentGate{db: db, invalidator: invalidator, log: o.log, obs: o.obs}
}

// ListAgents returns all agent profiles, verified or not. Unverified agents
// come first.
func (g *AgentGate) ListAgents(ctx context.Context) ([]models.Profile, error) {
	agents, err := store.List[models.Profile](ctx, g.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("role = ?", models.RoleAgent).Order("verified ASC, created_at ASC, id ASC")
	})
	if err != nil {
		logging.Error(g.log, "moderation", "ListAgents", GateAgent, nil, err)
		return nil, err
	}
	return agents, nil
}

func (g *AgentGate) agent(ctx context.Context, op string, id uint) (*models.Profile, error) {
	p, err := store.Get[models.Profile](ctx, g.db, id)
	if err != nil {
		return nil, g.fail(op, id, err)
	}
	if !p.IsAgent() {
		return nil, fmt.Errorf("%s agent %d: %w", op, id, ErrNotAgent)
	}
	return p, nil
}

// Approve marks the agent verified. Approving twice is the same as once.
func (g *AgentGate) Approve(ctx context.Context, id uint) error {
	if _, err := g.agent(ctx, "Approve", id); err != nil {
		return err
	}
	if err := store.Update[models.Profile](ctx, g.db, id, map[string]any{"verified": true}); err != nil {
		return g.fail("Approve", id, err)
	}
	g.decided(id, DecisionApprove)
	return nil
}

// Reject deletes the agent profile. Listings that reference the agent are
// left in place.
func (g *AgentGate) Reject(ctx context.Context, id uint) error {
	if _, err := g.agent(ctx, "Reject", id); err != nil {
		return err
	}
	orphans, err := store.Count[models.Property](ctx, g.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("agent_id = ?", id)
	})
	if err != nil {
		return g.fail("Reject", id, err)
	}
	if err := store.Delete[models.Profile](ctx, g.db, id); err != nil {
		return g.fail("Reject", id, err)
	}
	if orphans > 0 {
		g.log.WithFields(logrus.Fields{"agent_id": id, "orphaned_properties": orphans}).Warn("rejected agent still referenced by listings")
	}
	g.decided(id, DecisionReject)
	return nil
}

func (g *AgentGate) decided(id uint, decision string) {
	if g.invalidator != nil {
		g.invalidator.Invalidate(id)
	}
	g.obs.ObserveDecision(GateAgent, decision)
	g.log.WithFields(logrus.Fields{"gate": GateAgent, "id": id, "decision": decision}).Info("agent decided")
}

func (g *AgentGate) fail(op string, id uint, err error) error {
	if !errors.Is(err, ErrNotFound) {
		logging.Error(g.log, "moderation", op, GateAgent, map[string]any{"id": id}, err)
	}
	return fmt.Errorf("%s agent %d: %w", op, id, err)
}
