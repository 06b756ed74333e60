package imagesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mataam/internal/catalog/memstore"
	"mataam/internal/cdn"
	"mataam/internal/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ev events.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestTriggerRejectsOverlap(t *testing.T) {
	prov := &fakeProvider{
		files:   []cdn.File{{ID: "p1", Name: "x.png", URL: "u", Path: "/products"}},
		entered: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	pub := &recordingPublisher{}
	job := NewJob(NewSyncer(memstore.New(), prov, quietLog()), pub, quietLog())

	done := make(chan error, 1)
	go func() {
		_, err := job.Trigger(context.Background())
		done <- err
	}()
	<-prov.entered

	if !job.Running() {
		t.Fatalf("job should report running")
	}
	if _, err := job.Trigger(context.Background()); !errors.Is(err, ErrInProgress) {
		t.Fatalf("expected ErrInProgress, got %v", err)
	}

	close(prov.block)
	if err := <-done; err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	if job.Running() {
		t.Fatalf("flag not released")
	}
	if pub.count() != 1 {
		t.Fatalf("expected one catalog.changed event, got %d", pub.count())
	}

	// Nothing new: no event.
	prov.entered, prov.block = nil, nil
	if _, err := job.Trigger(context.Background()); err != nil {
		t.Fatalf("second trigger: %v", err)
	}
	if pub.count() != 1 {
		t.Fatalf("empty pass must not publish")
	}
}

func TestTriggerFinishesAfterCancel(t *testing.T) {
	prov := &fakeProvider{
		files:   []cdn.File{{ID: "p1", Name: "x.png", URL: "u", Path: "/products"}},
		entered: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	store := memstore.New()
	job := NewJob(NewSyncer(store, prov, quietLog()), nil, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := job.Trigger(ctx)
		done <- err
	}()
	<-prov.entered
	cancel()
	close(prov.block)

	if err := <-done; err != nil {
		t.Fatalf("pass should complete despite cancel: %v", err)
	}
	ledger, _ := store.SyncedImages(context.Background())
	if len(ledger) != 1 {
		t.Fatalf("ledger = %d rows", len(ledger))
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	prov := &fakeProvider{}
	job := NewJob(NewSyncer(memstore.New(), prov, quietLog()), nil, quietLog())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Start(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after cancel")
	}
}

func TestStartDisabled(t *testing.T) {
	prov := &fakeProvider{entered: make(chan struct{}, 1)}
	job := NewJob(NewSyncer(memstore.New(), prov, quietLog()), nil, quietLog())
	if err := job.Start(context.Background(), 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-prov.entered:
		t.Fatalf("disabled schedule must not run a pass")
	default:
	}
}
