package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/pitabwire/frame/datastore/pool"
)

// Store is the persistence contract the orchestrator depends on.
// Insert failures are non-fatal there: the transcript value is still
// returned to the caller.
type Store interface {
	Insert(ctx context.Context, t *Transcript) error
}

// Repository provides transcript persistence over the frame datastore.
type Repository struct {
	pool pool.Pool
}

var _ Store = (*Repository)(nil)

// NewRepository creates a transcript repository.
func NewRepository(pool pool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) db(ctx context.Context, readOnly bool) *gorm.DB {
	return r.pool.DB(ctx, readOnly)
}

// Insert persists a new transcript.
func (r *Repository) Insert(ctx context.Context, t *Transcript) error {
	return r.db(ctx, false).Create(t).Error
}

// GetByID returns a transcript by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Transcript, error) {
	var t Transcript
	err := r.db(ctx, true).Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns transcripts newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Transcript, error) {
	var items []Transcript
	q := r.db(ctx, true).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&items).Error
	return items, err
}

// Delete removes a transcript from history.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db(ctx, false).Where("id = ?", id).Delete(&Transcript{}).Error
}
