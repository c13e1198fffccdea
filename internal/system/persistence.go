package system

import (
	"context"
	"time"

	"github.com/apocgo/server/internal/core/event"
	coresys "github.com/apocgo/server/internal/core/system"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
)

// DefaultPersistInterval is one game hour.
const DefaultPersistInterval = world.TicksPerHour

const (
	persistTimeout   = 5 * time.Second
	persistQueueSize = 4
)

// CounterStore keeps the id allocator counters.
type CounterStore interface {
	SaveCounters(ctx context.Context, counters map[string]uint64) error
}

// MessageStore archives delivered game messages.
type MessageStore interface {
	AppendMessages(ctx context.Context, msgs []world.EventMessage) error
}

type persistBatch struct {
	counters map[string]uint64
	messages []world.EventMessage
}

// PersistenceSystem collects delivered messages and, once per interval,
// hands them with an id counter snapshot to a writer goroutine. The tick
// itself never waits on the database. Phase 5 (Persist).
type PersistenceSystem struct {
	world    *world.State
	counters CounterStore
	messages MessageStore
	log      *zap.Logger

	pending  []world.EventMessage
	elapsed  uint
	interval uint // game ticks between saves

	batches chan persistBatch
	done    chan struct{}
	// failed is owned by the writer goroutine.
	failed []world.EventMessage
}

func NewPersistenceSystem(ws *world.State, counters CounterStore, messages MessageStore, intervalTicks uint) *PersistenceSystem {
	if intervalTicks == 0 {
		intervalTicks = DefaultPersistInterval
	}
	s := &PersistenceSystem{
		world:    ws,
		counters: counters,
		messages: messages,
		log:      ws.Log,
		interval: intervalTicks,
		batches:  make(chan persistBatch, persistQueueSize),
		done:     make(chan struct{}),
	}
	event.Subscribe(ws.Bus, s.capture)
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) capture(ev event.GameEvent) {
	s.pending = append(s.pending, world.NewEventMessage(s.world.CityTime(), ev))
}

func (s *PersistenceSystem) Update(ticks uint) {
	s.elapsed += ticks
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	select {
	case s.batches <- s.batch():
		s.pending = nil
	default:
		s.log.Warn("persistence writer busy, save deferred", zap.Int("pending", len(s.pending)))
	}
}

// Pending is the number of messages not yet handed to the writer.
func (s *PersistenceSystem) Pending() int { return len(s.pending) }

func (s *PersistenceSystem) batch() persistBatch {
	return persistBatch{counters: s.world.IDs.Snapshot(), messages: s.pending}
}

// Run writes batches until Close or ctx cancellation.
func (s *PersistenceSystem) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case b, ok := <-s.batches:
			if !ok {
				return
			}
			s.write(b)
		case <-ctx.Done():
			return
		}
	}
}

// Close hands everything still pending to the writer and waits for it to
// finish. Run must be active.
func (s *PersistenceSystem) Close() {
	s.batches <- s.batch()
	s.pending = nil
	close(s.batches)
	<-s.done
}

// write saves one batch. Messages that fail to archive are retried with
// the next batch.
func (s *PersistenceSystem) write(b persistBatch) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if s.counters != nil {
		if err := s.counters.SaveCounters(ctx, b.counters); err != nil {
			s.log.Error("save id counters failed", zap.Error(err))
		}
	}
	msgs := append(s.failed, b.messages...)
	if s.messages == nil || len(msgs) == 0 {
		return
	}
	if err := s.messages.AppendMessages(ctx, msgs); err != nil {
		s.log.Error("archive messages failed", zap.Int("count", len(msgs)), zap.Error(err))
		s.failed = msgs
		return
	}
	s.log.Debug("messages archived", zap.Int("count", len(msgs)))
	s.failed = nil
}
