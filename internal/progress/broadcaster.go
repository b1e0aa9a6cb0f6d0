// Package progress fans migration run events out to live observers.
//
// Delivery is at-most-once and best-effort: each observer owns a bounded
// outbound queue, a delivery that would block deregisters the observer,
// and nothing published before registration is ever replayed.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/crm-migrate/internal/model"
)

const (
	// DefaultPingInterval is the keep-alive cadence per observer.
	DefaultPingInterval = 30 * time.Second

	// defaultQueueSize bounds each observer's outbound queue.
	defaultQueueSize = 64
)

// Observer is one registered progress listener. Events arrive on Events
// in publish order; Done is closed when the observer is deregistered.
type Observer struct {
	ID     string
	events chan model.ProgressEvent
	done   chan struct{}
	once   sync.Once
}

// Events returns the observer's outbound queue.
func (o *Observer) Events() <-chan model.ProgressEvent { return o.events }

// Done is closed when the observer has been deregistered; no further
// events will be delivered after that.
func (o *Observer) Done() <-chan struct{} { return o.done }

func (o *Observer) close() {
	o.once.Do(func() { close(o.done) })
}

// Broadcaster delivers run events to any number of observers.
type Broadcaster struct {
	mu           sync.Mutex
	observers    map[string]*Observer
	pingInterval time.Duration
	queueSize    int
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithPingInterval overrides the keep-alive interval.
func WithPingInterval(d time.Duration) Option {
	return func(b *Broadcaster) { b.pingInterval = d }
}

// WithQueueSize overrides the per-observer queue bound.
func WithQueueSize(n int) Option {
	return func(b *Broadcaster) { b.queueSize = n }
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		observers:    make(map[string]*Observer),
		pingInterval: DefaultPingInterval,
		queueSize:    defaultQueueSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds an observer, immediately queues a connected event for it,
// and starts its periodic keep-alive ping.
func (b *Broadcaster) Register() *Observer {
	obs := &Observer{
		ID:     uuid.New().String(),
		events: make(chan model.ProgressEvent, b.queueSize),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.observers[obs.ID] = obs
	b.mu.Unlock()

	b.deliver(obs, model.NewProgressEvent(model.EventConnected, map[string]any{
		"observer_id": obs.ID,
	}))

	go b.pingLoop(obs)

	zap.L().Debug("observer registered", zap.String("observer_id", obs.ID))
	return obs
}

// Deregister removes an observer. Idempotent; safe during publish.
func (b *Broadcaster) Deregister(id string) {
	b.mu.Lock()
	obs, ok := b.observers[id]
	if ok {
		delete(b.observers, id)
	}
	b.mu.Unlock()

	if ok {
		obs.close()
		zap.L().Debug("observer deregistered", zap.String("observer_id", id))
	}
}

// Publish queues an event for every currently registered observer. It
// never blocks: an observer whose queue is full has failed delivery and
// is deregistered.
func (b *Broadcaster) Publish(kind model.EventKind, payload map[string]any) {
	event := model.NewProgressEvent(kind, payload)

	b.mu.Lock()
	targets := make([]*Observer, 0, len(b.observers))
	for _, obs := range b.observers {
		targets = append(targets, obs)
	}
	b.mu.Unlock()

	for _, obs := range targets {
		b.deliver(obs, event)
	}
}

// ObserverCount returns the number of currently registered observers.
func (b *Broadcaster) ObserverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// deliver attempts a non-blocking send; a full queue deregisters the
// observer.
func (b *Broadcaster) deliver(obs *Observer, event model.ProgressEvent) {
	select {
	case obs.events <- event:
	default:
		zap.L().Warn("observer queue full, dropping observer",
			zap.String("observer_id", obs.ID),
			zap.String("kind", string(event.Kind)),
		)
		b.Deregister(obs.ID)
	}
}

// pingLoop emits keep-alive pings to one observer until it is deregistered.
func (b *Broadcaster) pingLoop(obs *Observer) {
	ticker := time.NewTicker(b.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-obs.done:
			return
		case <-ticker.C:
			b.deliver(obs, model.NewProgressEvent(model.EventPing, nil))
		}
	}
}
