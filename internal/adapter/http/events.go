package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/BankkRoll/clipy/internal/domain"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts losing samples rather than blocking the engine.
const subscriberBuffer = 64

// Hub fans progress samples out to SSE subscribers. It implements
// domain.Notifier.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan domain.ProgressSample]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan domain.ProgressSample]struct{}),
	}
}

// Publish delivers a sample to every subscriber. Delivery is non-blocking;
// samples to a full subscriber channel are dropped.
func (h *Hub) Publish(sample domain.ProgressSample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- sample:
		default:
			logrus.WithField("jobId", sample.JobID).Debug("dropped sample for slow subscriber")
		}
	}
}

// Subscribe registers a new subscriber channel.
func (h *Hub) Subscribe() chan domain.ProgressSample {
	ch := make(chan domain.ProgressSample, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan domain.ProgressSample) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// handleEvents streams progress samples as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case sample, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(sample)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
