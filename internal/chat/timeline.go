package chat

import (
	"sync"

	"github.com/diewo77/go-rems/internal/models"
)

// Timeline is one viewer's message list. A message added optimistically by
// its sender and later echoed back by the live feed appears once, keyed on
// ClientID.
type Timeline struct {
	mu    sync.Mutex
	index map[string]int
	msgs  []models.Message
}

// NewTimeline starts from an already loaded history.
func NewTimeline(history []models.Message) *Timeline {
	t := &Timeline{index: make(map[string]int, len(history))}
	for _, m := range history {
		t.Apply(m)
	}
	return t
}

// AppendLocal adds a message the viewer just sent. It returns false when the
// message is already present.
func (t *Timeline) AppendLocal(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.index[m.ClientID]; ok {
		return false
	}
	t.append(m)
	return true
}

// Apply merges a stored or notified message. A known ClientID replaces the
// local copy with the stored one and reports false.
func (t *Timeline) Apply(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[m.ClientID]; ok {
		t.msgs[i] = m
		return false
	}
	t.append(m)
	return true
}

func (t *Timeline) append(m models.Message) {
	t.index[m.ClientID] = len(t.msgs)
	t.msgs = append(t.msgs, m)
}

// Messages returns a copy in arrival order.
func (t *Timeline) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.msgs)
}
