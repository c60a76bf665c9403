package orchestrator

import (
	"sync"
	"time"
)

// Event kinds published during a batch.
const (
	EventBatchStarted     = "batch_started"
	EventToolSelected     = "tool_selected"
	EventQuestionAnswered = "question_answered"
	EventBatchFailed      = "batch_failed"
	EventBatchCompleted   = "batch_completed"
)

// Event is a progress notification for one batch.
type Event struct {
	Event   string         `json:"event"`
	BatchID string         `json:"batch_id"`
	Time    time.Time      `json:"time"`
	Payload map[string]any `json:"payload,omitempty"`
}

type subscriber chan Event

// Hub fans batch events out to subscribers. Subscribing to "" receives every batch.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[subscriber]struct{} // batchID -> set of subscribers
}

func NewHub() *Hub { return &Hub{subs: map[string]map[subscriber]struct{}{}} }

// Subscribe returns a buffered channel of events for batchID and a func that
// unsubscribes and closes it.
func (h *Hub) Subscribe(batchID string) (<-chan Event, func()) {
	ch := make(subscriber, 64)
	h.mu.Lock()
	set := h.subs[batchID]
	if set == nil {
		set = map[subscriber]struct{}{}
		h.subs[batchID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[batchID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, batchID)
				}
			}
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Publish delivers ev to the batch's subscribers and to the catch-all ones.
// Slow subscribers drop events rather than block the batch.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, key := range []string{ev.BatchID, ""} {
		for ch := range h.subs[key] {
			select {
			case ch <- ev:
			default:
			}
		}
		if ev.BatchID == "" {
			break
		}
	}
}
