package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nuvemflow/orderdesk-backend/internal/repo"
	"github.com/nuvemflow/orderdesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Update carries the annotation fields being changed; nil fields are left as stored.
type Update struct {
	Note      *string
	Attention *bool
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Note == nil && u.Attention == nil
}

// Store persists order annotations and the aggregate counts row.
type Store struct {
	repo.Base
	now func() time.Time
}

// NewStore builds a Store bound to the provided DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{Base: repo.NewBase(db), now: time.Now}
}

// Get returns the annotation for orderID, or nil when none exists.
func (s *Store) Get(ctx context.Context, orderID string) (*models.OrderNote, error) {
	var note models.OrderNote
	err := s.DB(ctx).Where("order_id = ?", orderID).Take(&note).Error
	if repo.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Set creates the annotation on first save and otherwise updates only the
// supplied fields.
func (s *Store) Set(ctx context.Context, orderID string, update Update) (*models.OrderNote, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("order id required")
	}
	if update.Empty() {
		return nil, fmt.Errorf("annotation update is empty")
	}

	var saved models.OrderNote
	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var existing models.OrderNote
		err := tx.Where("order_id = ?", orderID).Take(&existing).Error
		switch {
		case repo.IsNotFound(err):
			now := s.now().UTC()
			saved = models.OrderNote{OrderID: orderID, Note: update.Note, CreatedAt: now, UpdatedAt: now}
			if update.Attention != nil {
				saved.Attention = *update.Attention
			}
			return tx.Create(&saved).Error
		case err != nil:
			return err
		}

		updates := map[string]any{"updated_at": s.now().UTC()}
		if update.Note != nil {
			updates["note"] = *update.Note
		}
		if update.Attention != nil {
			updates["attention"] = *update.Attention
		}
		if err := tx.Model(&models.OrderNote{}).Where("order_id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", orderID).Take(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes the annotation. Deleting a missing annotation is not an error.
func (s *Store) Delete(ctx context.Context, orderID string) error {
	return s.DB(ctx).Where("order_id = ?", orderID).Delete(&models.OrderNote{}).Error
}

// ListAttention returns every annotation flagged for attention, newest first.
func (s *Store) ListAttention(ctx context.Context) ([]models.OrderNote, error) {
	var rows []models.OrderNote
	if err := s.DB(ctx).
		Where("attention = ?", true).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCounts returns the stored counts, or nil before the first refresh.
func (s *Store) GetCounts(ctx context.Context) (*models.OrderCounts, error) {
	var counts models.OrderCounts
	err := s.DB(ctx).Where("id = ?", models.OrderCountsRowID).Take(&counts).Error
	if repo.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (s *Store) SetCounts(ctx context.Context, unshipped, shipped int64) error {
	row := models.OrderCounts{
		ID:        models.OrderCountsRowID,
		Unshipped: unshipped,
		Shipped:   shipped,
		UpdatedAt: s.now().UTC(),
	}
	// Save inserts or replaces by primary key.
	return s.DB(ctx).Save(&row).Error
}
