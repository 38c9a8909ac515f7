// Package leads tracks buyer interest in a property through a closed set of
// statuses. Any status can move to any other status.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusViewing   Status = "viewing"
	StatusOffer     Status = "offer"
	StatusClosed    Status = "closed"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusViewing, StatusOffer, StatusClosed}

var (
	ErrInvalidStatus = errors.New("invalid lead status")
	ErrNotFound      = errors.New("lead not found")
)

// ParseStatus accepts only the five known statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Lead is a buyer's interest in a property, owned by the property's agent.
type Lead struct {
	ID         uint      `json:"id"`
	PropertyID uint      `json:"property_id"`
	AgentID    uint      `json:"agent_id"`
	BuyerID    uint      `json:"buyer_id,omitempty"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
	BuyerPhone string    `json:"buyer_phone,omitempty"`
	Message    string    `json:"message,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Store keeps leads. Add assigns the ID and sets Status to new when empty.
type Store interface {
	Add(ctx context.Context, l Lead) (Lead, error)
	Get(ctx context.Context, id uint) (Lead, error)
	ListByProperty(ctx context.Context, propertyID uint) ([]Lead, error)
	ListForAgent(ctx context.Context, agentID uint) ([]Lead, error)
	SetStatus(ctx context.Context, id uint, s Status) (Lead, error)
	CountByStatus(ctx context.Context, agentID uint) (map[Status]int, error)
}

// Interest is what a buyer submits from a property page.
type Interest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"max=2000"`
}

func newCounts() map[Status]int {
	m := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		m[s] = 0
	}
	return m
}
