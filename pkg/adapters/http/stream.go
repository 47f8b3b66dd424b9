package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/violation"
)

// AllSubjects is the topic that receives every report.
const AllSubjects = "*"

// StreamManager fans violation reports out to SSE subscribers, keyed by
// subject name.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // subject -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for topic. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast sends msg to the subscribers of topic and of AllSubjects.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{topic, AllSubjects} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping report", "topic", key)
			}
		}
		if topic == AllSubjects {
			break
		}
	}
}

// Hooks broadcasts a report for every pass with violations.
func (sm *StreamManager) Hooks() typeguard.Hooks {
	return typeguard.Hooks{
		OnPassEnd: func(_ context.Context, e *typeguard.PassEvent) {
			if len(e.Violations) == 0 {
				return
			}
			report := violation.NewReport(e.Subject, e.Mode, e.Violations)
			report.ID = e.ID
			data, err := json.Marshal(report)
			if err != nil {
				slog.Error("SSE: failed to encode report", "err", err)
				return
			}
			sm.Broadcast(e.Subject.Name, string(data))
		},
	}
}
