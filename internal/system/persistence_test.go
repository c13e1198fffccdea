package system

import (
	"context"
	"errors"
	"testing"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/world"
)

type fakeStore struct {
	counters []map[string]uint64
	messages []world.EventMessage
	fail     error
}

func (f *fakeStore) SaveCounters(_ context.Context, c map[string]uint64) error {
	f.counters = append(f.counters, c)
	return nil
}

func (f *fakeStore) AppendMessages(_ context.Context, msgs []world.EventMessage) error {
	if f.fail != nil {
		return f.fail
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func TestPersistenceHandsOffOnInterval(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	InitState(ws)
	ws.Bus.Flush()
	ws.Time = world.NewGameTime(0)
	store := &fakeStore{}
	sc := NewScheduler(ws, DefaultConfig(), nil)
	ps := NewPersistenceSystem(ws, store, store, 100)
	sc.Register(ps)

	ws.IDs.NewID("VEHICLE_")
	ws.Emit(event.GameEvent{Kind: event.KindUfoSpotted, Text: "UFO spotted", Location: event.NoLocation})
	ws.Bus.Flush()
	if ps.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", ps.Pending())
	}

	sc.Update(99)
	if ps.Pending() != 1 || len(ps.batches) != 0 {
		t.Fatal("handed off before the interval elapsed")
	}
	sc.Update(1)
	if ps.Pending() != 0 || len(ps.batches) != 1 {
		t.Fatalf("pending = %d, queued = %d after interval", ps.Pending(), len(ps.batches))
	}

	ws.Emit(event.GameEvent{Kind: event.KindBaseFounded, Text: "Base founded"})
	ws.Bus.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ps.Run(ctx)
	ps.Close()

	if len(store.counters) != 2 || store.counters[0]["VEHICLE_"] == 0 {
		t.Fatalf("counters = %v", store.counters)
	}
	if len(store.messages) != 2 ||
		store.messages[0].Kind != event.KindUfoSpotted ||
		store.messages[1].Kind != event.KindBaseFounded {
		t.Fatalf("messages = %+v", store.messages)
	}
}

func TestPersistenceDefersWhenWriterBusy(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	ps := NewPersistenceSystem(ws, nil, &fakeStore{}, 1)
	for i := 0; i < persistQueueSize; i++ {
		ps.Update(1)
	}
	ws.Emit(event.GameEvent{Kind: event.KindUfoSpotted, Text: "UFO spotted"})
	ws.Bus.Flush()
	ps.Update(1)
	if ps.Pending() != 1 {
		t.Fatalf("pending = %d, want message kept", ps.Pending())
	}
	if logs.FilterMessage("persistence writer busy, save deferred").Len() != 1 {
		t.Fatal("deferral not logged")
	}
}

func TestPersistenceRetriesFailedMessages(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	store := &fakeStore{fail: errors.New("connection refused")}
	ps := NewPersistenceSystem(ws, store, store, 0)

	first := world.EventMessage{Kind: event.KindBaseFounded, Text: "Base founded"}
	ps.write(persistBatch{messages: []world.EventMessage{first}})
	if len(ps.failed) != 1 {
		t.Fatalf("failed = %d, want message kept", len(ps.failed))
	}
	if logs.FilterMessage("archive messages failed").Len() != 1 {
		t.Fatal("failure not logged")
	}

	store.fail = nil
	second := world.EventMessage{Kind: event.KindUfoSpotted, Text: "UFO spotted"}
	ps.write(persistBatch{messages: []world.EventMessage{second}})
	if len(ps.failed) != 0 || len(store.messages) != 2 || store.messages[0].Text != "Base founded" {
		t.Fatalf("retry did not archive in order: %+v", store.messages)
	}
}
