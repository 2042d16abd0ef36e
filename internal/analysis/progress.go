package analysis

import (
	"sync"
)

// Progress is one per-security progress event emitted during a batch run
type Progress struct {
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	PeriodType string `json:"period_type"`
	Outcome    string `json:"outcome"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
}

// ProgressTracker fans out progress events to subscribers.
// 느린 구독자가 배치 실행을 막으면 안 되므로 전송은 non-blocking
type ProgressTracker struct {
	mu   sync.RWMutex
	subs map[chan Progress]struct{}
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		subs: make(map[chan Progress]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function
func (t *ProgressTracker) Subscribe() (<-chan Progress, func()) {
	ch := make(chan Progress, 64)

	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	unsubscribe := func() {
		t.mu.Lock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish delivers an event to every subscriber, dropping it for
// subscribers whose buffer is full
func (t *ProgressTracker) Publish(event Progress) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for ch := range t.subs {
		select {
		case ch <- event:
		default:
			// 구독자 버퍼가 가득 차면 해당 이벤트는 버림
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (t *ProgressTracker) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
