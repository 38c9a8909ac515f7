// Package chat implements the per-property conversation between buyers and
// the listing agent: history, sending and live delivery.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/realtime"
	"github.com/diewo77/go-rems/internal/store"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrReceiverRequired = errors.New("agent must name a receiver")
	ErrMessageTooLong   = errors.New("message is too long")
	ErrInvalidClientID  = errors.New("client id must be a uuid")
	ErrPropertyNotFound = errors.New("property not found")
	ErrClientIDConflict = errors.New("client id already used by another message")
)

const maxContent = 4000

// Observer is told about sends and stream lifecycles.
type Observer interface {
	MessageSent()
	SubscribersChanged(delta int)
}

type nopObserver struct{}

func (nopObserver) MessageSent()           {}
func (nopObserver) SubscribersChanged(int) {}

// SendInput is one outgoing message. ReceiverID is only read when the sender
// is the listing agent; a buyer's message always goes to the agent. ClientID
// is generated when empty.
type SendInput struct {
	PropertyID uint   `json:"property_id"`
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
	ClientID   string `json:"client_id"`
}

type Service struct {
	db     *gorm.DB
	broker realtime.Broker
	log    *logrus.Logger
	obs    Observer
}

func NewService(db *gorm.DB, broker realtime.Broker, log *logrus.Logger, obs Observer) *Service {
	if log == nil {
		log = logging.Discard()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Service{db: db, broker: broker, log: log, obs: obs}
}

func (s *Service) agentOf(ctx context.Context, propertyID uint) (uint, error) {
	p, err := store.Get[models.Property](ctx, s.db, propertyID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrPropertyNotFound
	}
	if err != nil {
		return 0, err
	}
	return p.AgentID, nil
}

// visibleTo reports whether viewer may see m. The agent sees the whole
// property conversation; anyone else only their exchange with the agent.
func visibleTo(m *models.Message, viewerID, agentID uint) bool {
	return viewerID == agentID || m.Involves(viewerID)
}

// History returns the property's messages oldest first, without pagination.
func (s *Service) History(ctx context.Context, propertyID, viewerID uint) ([]models.Message, error) {
	agentID, err := s.agentOf(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	msgs, err := store.List[models.Message](ctx, s.db, func(q *gorm.DB) *gorm.DB {
		q = q.Where("property_id = ?", propertyID)
		if viewerID != agentID {
			q = q.Where("sender_id = ? OR receiver_id = ?", viewerID, viewerID)
		}
		return q.Order("created_at ASC, id ASC")
	})
	if err != nil {
		logging.Error(s.log, "chat", "History", "select", map[string]any{"property_id": propertyID}, err)
		return nil, err
	}
	return msgs, nil
}

// Send stores the message then notifies subscribers. Sending the same
// ClientID twice returns the stored message without a second row.
func (s *Service) Send(ctx context.Context, in SendInput) (models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if len([]rune(content)) > maxContent {
		return models.Message{}, ErrMessageTooLong
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	} else if _, err := uuid.Parse(clientID); err != nil {
		return models.Message{}, ErrInvalidClientID
	}

	agentID, err := s.agentOf(ctx, in.PropertyID)
	if err != nil {
		return models.Message{}, err
	}
	receiver := in.ReceiverID
	if in.SenderID == agentID {
		if receiver == 0 || receiver == agentID {
			return models.Message{}, ErrReceiverRequired
		}
	} else {
		// buyers only ever talk to the listing agent
		receiver = agentID
	}

	if existing, ok, err := s.byClientID(ctx, clientID); err != nil {
		return models.Message{}, err
	} else if ok {
		return resubmitted(existing, in)
	}

	msg := models.Message{
		ClientID:   clientID,
		PropertyID: in.PropertyID,
		SenderID:   in.SenderID,
		ReceiverID: receiver,
		Content:    content,
	}
	if err := store.Insert(ctx, s.db, &msg); err != nil {
		if store.IsUniqueViolation(err) {
			// lost a race with a resubmission of the same client id
			if existing, ok, lookupErr := s.byClientID(ctx, clientID); lookupErr == nil && ok {
				return resubmitted(existing, in)
			}
		}
		logging.Error(s.log, "chat", "Send", "insert", map[string]any{"property_id": in.PropertyID}, err)
		return models.Message{}, err
	}
	s.obs.MessageSent()
	s.publish(ctx, msg)
	return msg, nil
}

// resubmitted returns existing when it is the same sender resending into the
// same property. A client id held by anyone else is a conflict.
func resubmitted(existing models.Message, in SendInput) (models.Message, error) {
	if existing.SenderID != in.SenderID || existing.PropertyID != in.PropertyID {
		return models.Message{}, ErrClientIDConflict
	}
	return existing, nil
}

func (s *Service) byClientID(ctx context.Context, clientID string) (models.Message, bool, error) {
	var m models.Message
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Limit(1).Find(&m).Error
	if err != nil {
		return models.Message{}, false, fmt.Errorf("select message by client id: %w", err)
	}
	return m, m.ID != 0, nil
}

// publish failures are logged; the message is already stored and shows up
// in the next history load.
func (s *Service) publish(ctx context.Context, msg models.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.Error(s.log, "chat", "publish", "encode", nil, err)
		return
	}
	if err := s.broker.Publish(ctx, realtime.PropertyTopic(msg.PropertyID), payload); err != nil {
		logging.Error(s.log, "chat", "publish", "broker", map[string]any{"property_id": msg.PropertyID}, err)
	}
}

// Subscribe streams new messages of the property that viewer may see. The
// channel closes when ctx ends.
func (s *Service) Subscribe(ctx context.Context, propertyID, viewerID uint) (<-chan models.Message, error) {
	agentID, err := s.agentOf(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	sub, err := s.broker.Subscribe(ctx, realtime.PropertyTopic(propertyID))
	if err != nil {
		logging.Error(s.log, "chat", "Subscribe", "broker", map[string]any{"property_id": propertyID}, err)
		return nil, err
	}
	s.obs.SubscribersChanged(1)

	out := make(chan models.Message, 16)
	go func() {
		defer close(out)
		defer s.obs.SubscribersChanged(-1)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-sub.C():
				if !ok {
					return
				}
				var m models.Message
				if err := json.Unmarshal(payload, &m); err != nil {
					s.log.WithError(err).Warn("dropping undecodable chat payload")
					continue
				}
				if !visibleTo(&m, viewerID, agentID) {
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
