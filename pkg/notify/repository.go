package notify

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pitabwire/frame/datastore/pool"

	"github.com/dictaflow/dictaflow/pkg/events"
)

// Repository provides CRUD operations for notification models.
type Repository struct {
	pool pool.Pool
}

// NewRepository creates a notification repository.
func NewRepository(pool pool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) db(ctx context.Context, readOnly bool) *gorm.DB {
	return r.pool.DB(ctx, readOnly)
}

// CreateEndpoint persists a new endpoint.
func (r *Repository) CreateEndpoint(ctx context.Context, ep *Endpoint) error {
	return r.db(ctx, false).Create(ep).Error
}

// GetEndpoint returns an endpoint by ID.
func (r *Repository) GetEndpoint(ctx context.Context, id string) (*Endpoint, error) {
	var ep Endpoint
	err := r.db(ctx, true).Where("id = ?", id).First(&ep).Error
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// ListEndpoints returns all endpoints.
func (r *Repository) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	var endpoints []Endpoint
	err := r.db(ctx, true).Find(&endpoints).Error
	return endpoints, err
}

// ListByEventType returns active endpoints subscribed to the event type.
func (r *Repository) ListByEventType(ctx context.Context, et events.EventType) ([]Endpoint, error) {
	var endpoints []Endpoint
	err := r.db(ctx, true).
		Where("is_active = ? AND event_types @> ?", true, fmt.Sprintf(`[%q]`, et)).
		Find(&endpoints).Error
	return endpoints, err
}

// UpdateEndpoint persists endpoint changes.
func (r *Repository) UpdateEndpoint(ctx context.Context, ep *Endpoint) error {
	return r.db(ctx, false).Save(ep).Error
}

// DeleteEndpoint soft-deletes an endpoint.
func (r *Repository) DeleteEndpoint(ctx context.Context, id string) error {
	return r.db(ctx, false).Where("id = ?", id).Delete(&Endpoint{}).Error
}

// RecordDelivery persists one delivery attempt.
func (r *Repository) RecordDelivery(ctx context.Context, rec *DeliveryRecord) error {
	return r.db(ctx, false).Create(rec).Error
}

// ListDeliveries returns delivery attempts for an endpoint, newest first.
func (r *Repository) ListDeliveries(ctx context.Context, endpointID string, limit int) ([]DeliveryRecord, error) {
	var records []DeliveryRecord
	q := r.db(ctx, true).
		Where("endpoint_id = ?", endpointID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// CreateDeadEvent persists an event that exhausted its retries.
func (r *Repository) CreateDeadEvent(ctx context.Context, de *DeadEvent) error {
	return r.db(ctx, false).Create(de).Error
}

// ListDeadEvents returns dead events for an endpoint, newest first.
func (r *Repository) ListDeadEvents(ctx context.Context, endpointID string) ([]DeadEvent, error) {
	var dead []DeadEvent
	err := r.db(ctx, true).
		Where("endpoint_id = ?", endpointID).
		Order("created_at DESC").
		Find(&dead).Error
	return dead, err
}
