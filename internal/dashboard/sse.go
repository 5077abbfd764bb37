package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// refreshEvent announces that cached snapshots were invalidated and clients
// should reload.
type refreshEvent struct {
	BusinessUnits []string `json:"business_units"`
}

// broker fans refresh events out to connected SSE clients. Slow clients drop
// events rather than block the publisher.
type broker struct {
	mu   sync.Mutex
	subs map[chan refreshEvent]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[chan refreshEvent]struct{})}
}

func (b *broker) subscribe() chan refreshEvent {
	ch := make(chan refreshEvent, 4)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broker) unsubscribe(ch chan refreshEvent) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *broker) publish(ev refreshEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// handleEvents streams refresh notifications as server-sent events until the
// client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("encode refresh event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
