package location

import (
	"sync"

	"github.com/matst80/store-locator/pkg/logger"
)

type ChangeKind string

const (
	LocationUpdated   ChangeKind = "location_updated"
	PermissionChanged ChangeKind = "permission_changed"
)

type StatusChange struct {
	SessionId string     `json:"sessionId"`
	Kind      ChangeKind `json:"kind"`
	Status    Status     `json:"status"`
}

type Subscriber func(StatusChange)

// Notifier is an explicit observer list. Subscribers run synchronously in
// subscription order; a panicking subscriber is logged and the rest still run.
type Notifier struct {
	mu   sync.RWMutex
	next int
	subs map[int]Subscriber
	ids  []int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]Subscriber)}
}

// Subscribe registers fn and returns a function that removes it again.
func (n *Notifier) Subscribe(fn Subscriber) (unsubscribe func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.ids = append(n.ids, id)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			for i, v := range n.ids {
				if v == id {
					n.ids = append(n.ids[:i:i], n.ids[i+1:]...)
					break
				}
			}
		})
	}
}

func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.ids)
}

func (n *Notifier) Notify(change StatusChange) {
	n.mu.RLock()
	subs := make([]Subscriber, 0, len(n.ids))
	for _, id := range n.ids {
		subs = append(subs, n.subs[id])
	}
	n.mu.RUnlock()

	for _, fn := range subs {
		deliver(fn, change)
	}
}

func deliver(fn Subscriber, change StatusChange) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorf("location subscriber panicked on %s: %v", change.Kind, r)
		}
	}()
	fn(change)
}
