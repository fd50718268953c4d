package pubsub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event kinds delivered to websocket clients.
const (
	KindLeaderboardUpdate = "leaderboardUpdate"
	KindProfileUpdate     = "profileUpdate"
)

// Event is the realtime message contract. Topic is the contest ID, so clients
// only receive traffic for contests they subscribed to.
type Event struct {
	Kind      string      `json:"kind"`
	ContestID string      `json:"contestId"`
	Payload   interface{} `json:"payload"`
}

// Broker is a simple in-memory pub/sub fan-out keyed by contest topic. It is
// constructed once in main and injected wherever events originate; delivery is
// fire-and-forget and never fails the publishing operation.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte // topic -> list of subscriber channels
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan []byte),
	}
}

// Subscribe registers a subscriber for a topic and returns the message channel
// together with an unsubscribe function.
func (b *Broker) Subscribe(topic string) (<-chan []byte, func()) {
	b.mu.Lock()

	ch := make(chan []byte, 128)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subscribers := b.subscribers[topic]
		for i, sub := range subscribers {
			if sub == ch {
				b.subscribers[topic] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
		if len(b.subscribers[topic]) == 0 {
			delete(b.subscribers, topic)
		}
		zap.S().Debugf("unsubscribed from topic %s", topic)
	}

	zap.S().Debugf("new subscription to topic %s", topic)
	return ch, unsubscribe
}

// Publish marshals the event and delivers it to every subscriber of the topic.
// Slow subscribers whose channel is full have the message dropped so they can
// never block the publisher.
func (b *Broker) Publish(topic string, event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		zap.S().Errorf("failed to marshal %s event for topic %s: %v", event.Kind, topic, err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers a topic currently has.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// CloseTopic closes all subscriber channels for a topic, e.g. when a contest
// is torn down.
func (b *Broker) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[topic]; ok {
		for _, ch := range subscribers {
			close(ch)
		}
		delete(b.subscribers, topic)
		zap.S().Infof("closed pubsub topic %s", topic)
	}
}
