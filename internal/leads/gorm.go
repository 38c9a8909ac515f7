package leads

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
)

// GormStore persists leads in the leads table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func toLead(m models.Lead) Lead {
	return Lead{
		ID:         m.ID,
		PropertyID: m.PropertyID,
		AgentID:    m.AgentID,
		BuyerID:    m.BuyerID,
		BuyerName:  m.BuyerName,
		BuyerEmail: m.BuyerEmail,
		BuyerPhone: m.BuyerPhone,
		Message:    m.Message,
		Status:     Status(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *GormStore) Add(ctx context.Context, l Lead) (Lead, error) {
	if l.Status == "" {
		l.Status = StatusNew
	}
	st, err := ParseStatus(string(l.Status))
	if err != nil {
		return Lead{}, err
	}
	l.Status = st
	row := models.Lead{
		PropertyID: l.PropertyID,
		AgentID:    l.AgentID,
		BuyerID:    l.BuyerID,
		BuyerName:  l.BuyerName,
		BuyerEmail: l.BuyerEmail,
		BuyerPhone: l.BuyerPhone,
		Message:    l.Message,
		Status:     string(l.Status),
	}
	if err := store.Insert(ctx, g.db, &row); err != nil {
		return Lead{}, err
	}
	return toLead(row), nil
}

func (g *GormStore) Get(ctx context.Context, id uint) (Lead, error) {
	row, err := store.Get[models.Lead](ctx, g.db, id)
	if err != nil {
		return Lead{}, mapErr(err)
	}
	return toLead(*row), nil
}

func (g *GormStore) list(ctx context.Context, column string, id uint) ([]Lead, error) {
	rows, err := store.List[models.Lead](ctx, g.db, func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" = ?", id).Order("id DESC")
	})
	if err != nil {
		return nil, err
	}
	out := make([]Lead, len(rows))
	for i, r := range rows {
		out[i] = toLead(r)
	}
	return out, nil
}

func (g *GormStore) ListByProperty(ctx context.Context, propertyID uint) ([]Lead, error) {
	return g.list(ctx, "property_id", propertyID)
}

func (g *GormStore) ListForAgent(ctx context.Context, agentID uint) ([]Lead, error) {
	return g.list(ctx, "agent_id", agentID)
}

func (g *GormStore) SetStatus(ctx context.Context, id uint, s Status) (Lead, error) {
	st, err := ParseStatus(string(s))
	if err != nil {
		return Lead{}, err
	}
	if err := store.Update[models.Lead](ctx, g.db, id, map[string]any{"status": string(st)}); err != nil {
		return Lead{}, mapErr(err)
	}
	return g.Get(ctx, id)
}

func (g *GormStore) CountByStatus(ctx context.Context, agentID uint) (map[Status]int, error) {
	var rows []struct {
		Status string
		N      int
	}
	err := g.db.WithContext(ctx).Model(&models.Lead{}).
		Select("status, COUNT(*) AS n").
		Where("agent_id = ?", agentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := newCounts()
	for _, r := range rows {
		counts[Status(r.Status)] = r.N
	}
	return counts, nil
}
