package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/chat"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/services"
)

const keepAliveEvery = 25 * time.Second

type MessageHandler struct {
	chat      *chat.Service
	listings  *services.Listings
	log       logrus.FieldLogger
	keepAlive time.Duration
}

func NewMessageHandler(c *chat.Service, listings *services.Listings, log logrus.FieldLogger) *MessageHandler {
	return &MessageHandler{chat: c, listings: listings, log: log, keepAlive: keepAliveEvery}
}

// property loads the listing the viewer is allowed to see.
func (h *MessageHandler) property(r *http.Request) (*models.Property, error) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	d, err := h.listings.Detail(r.Context(), id, currentUserID(r))
	if err != nil {
		return nil, err
	}
	return d.Property, nil
}

// counterparts lists the buyers an agent has talked with, in id order.
func counterparts(msgs []models.Message, agentID uint) []uint {
	seen := map[uint]bool{}
	for _, m := range msgs {
		for _, id := range []uint{m.SenderID, m.ReceiverID} {
			if id != agentID {
				seen[id] = true
			}
		}
	}
	out := make([]uint, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func messagesPath(id uint) string { return fmt.Sprintf("/properties/%d/messages", id) }

func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	p, err := h.property(r)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	uid := currentUserID(r)
	msgs, err := h.chat.History(r.Context(), p.ID, uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"messages": msgs})
		return
	}
	isAgent := uid == p.AgentID
	data := map[string]any{
		"Property": p,
		"Messages": msgs,
		"UserID":   uid,
		"IsAgent":  isAgent,
	}
	if isAgent {
		data["Counterparts"] = counterparts(msgs, p.AgentID)
	}
	page(w, r, h.log, http.StatusOK, "properties/messages.html", data)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	p, err := h.property(r)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	var in chat.SendInput
	if err := httpx.Decode(r, &in, func() {
		in.Content = r.FormValue("content")
		in.ClientID = r.FormValue("client_id")
		rid, _ := strconv.ParseUint(r.FormValue("receiver_id"), 10, 64)
		in.ReceiverID = uint(rid)
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.PropertyID = p.ID
	in.SenderID = currentUserID(r)

	msg, err := h.chat.Send(r.Context(), in)
	if err != nil {
		fail(w, r, h.log, messagesPath(p.ID), err)
		return
	}
	done(w, r, http.StatusCreated, msg, messagesPath(p.ID), "")
}

// Stream sends new messages as Server-Sent Events until the client goes
// away. With ?history=1 the current history is sent first. Messages that
// arrive both in the history and on the live feed are sent once.
func (h *MessageHandler) Stream(w http.ResponseWriter, r *http.Request) {
	p, err := h.property(r)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.JSONError(w, http.StatusInternalServerError, "streaming_unsupported", nil)
		return
	}
	ctx := r.Context()
	uid := currentUserID(r)

	// subscribe before loading history so nothing falls in between
	live, err := h.chat.Subscribe(ctx, p.ID, uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	history, err := h.chat.History(ctx, p.ID, uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	timeline := chat.NewTimeline(history)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if r.URL.Query().Get("history") == "1" {
		for _, m := range history {
			if err := writeEvent(w, m); err != nil {
				return
			}
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-live:
			if !ok {
				return
			}
			if !timeline.Apply(m) {
				continue
			}
			if err := writeEvent(w, m); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, m models.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: message\ndata: %s\n\n", m.ID, payload)
	return err
}
