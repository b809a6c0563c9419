package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ztyaba/Uganda-Food-Delivery/internal/domain"
)

const subscriberBuffer = 16

// Subscription is one connected client listening on a set of channels.
type Subscription struct {
	Events chan domain.Event

	hub      *Hub
	channels []string
}

// Close detaches the subscription from the hub. Pending events are dropped.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub fans domain events out to subscribed clients. Delivery is best-effort:
// a subscriber whose buffer is full misses the event rather than blocking
// the publisher.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a client on the given channels.
func (h *Hub) Subscribe(channels ...string) *Subscription {
	sub := &Subscription{
		Events:   make(chan domain.Event, subscriberBuffer),
		hub:      h,
		channels: channels,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		set, ok := h.channels[ch]
		if !ok {
			set = make(map[*Subscription]struct{})
			h.channels[ch] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

// Publish routes each event to every subscriber of its channel.
func (h *Hub) Publish(events ...domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, event := range events {
		for sub := range h.channels[event.Channel] {
			select {
			case sub.Events <- event:
			default:
				zap.L().Warn("subscriber buffer full, dropping event",
					zap.String("channel", event.Channel),
					zap.String("event", string(event.Name)))
			}
		}
	}
}

// Subscribers reports how many clients listen on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range sub.channels {
		set, ok := h.channels[ch]
		if !ok {
			continue
		}
		delete(set, sub)
		if len(set) == 0 {
			delete(h.channels, ch)
		}
	}
}
