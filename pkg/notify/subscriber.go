package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"

	"github.com/dictaflow/dictaflow/pkg/events"
)

const defaultDeliveryWorkers = 16

// EndpointSource lists the active endpoints subscribed to an event type.
type EndpointSource interface {
	ListByEventType(ctx context.Context, et events.EventType) ([]Endpoint, error)
}

// Subscriber implements queue.SubscribeWorker to fan events out to
// matching endpoints.
type Subscriber struct {
	Repo      EndpointSource
	Deliverer *Deliverer
	Pool      workerpool.WorkerPool
	// Workers caps deliveries in flight across all events. Zero falls
	// back to defaultDeliveryWorkers.
	Workers int

	semOnce sync.Once
	sem     chan struct{}
}

func (s *Subscriber) slots() chan struct{} {
	s.semOnce.Do(func() {
		n := s.Workers
		if n <= 0 {
			n = defaultDeliveryWorkers
		}
		s.sem = make(chan struct{}, n)
	})
	return s.sem
}

// Handle is called by frame's pub/sub for each event message.
func (s *Subscriber) Handle(ctx context.Context, _ map[string]string, message []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		util.Log(ctx).WithError(err).Error("notify subscriber: unmarshal envelope")
		return err
	}

	endpoints, err := s.Repo.ListByEventType(ctx, env.Type)
	if err != nil {
		util.Log(ctx).WithError(err).Error("notify subscriber: list endpoints")
		return err
	}

	sem := s.slots()
	for _, ep := range endpoints {
		ep := ep
		env := env
		deliver := func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			s.Deliverer.Deliver(ctx, ep, env)
		}
		if s.Pool != nil {
			if err := s.Pool.Submit(ctx, deliver); err != nil {
				slog.WarnContext(ctx, "notify pool full", slog.String("endpoint_id", ep.ID))
			}
		} else {
			go deliver()
		}
	}

	return nil
}
