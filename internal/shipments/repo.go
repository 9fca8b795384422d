package shipments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
)

// Repository persists shipments together with their timelines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func orderedEvents(tx *gorm.DB) *gorm.DB {
	return tx.Order(trackingevents.OrderByTimeline)
}

// Create inserts the shipment row only; associations are written explicitly.
func (r *Repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(shipment).Error
}

// CreateEvent inserts a tracking event row.
func (r *Repository) CreateEvent(ctx context.Context, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ExistsByTrackingNumber reports whether the tracking number is taken.
func (r *Repository) ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error
	return count > 0, err
}

// List returns every shipment, newest first, with ordered events and manager.
func (r *Repository) List(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Events", orderedEvents).
		Preload("Manager").
		Order("created_at DESC").
		Find(&shipments).Error
	return shipments, err
}

// FindByID loads one shipment with ordered events and manager.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Events", orderedEvents).
		Preload("Manager").
		Where("id = ?", id).
		Take(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// FindByTrackingNumber loads one shipment with ordered events. The manager is
// not loaded.
func (r *Repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Events", orderedEvents).
		Where("tracking_number = ?", trackingNumber).
		Take(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// Update applies column updates and reports how many rows matched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes the shipment and its events and reports whether the shipment existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", id).Delete(&models.TrackingEvent{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Shipment{})
	return res.RowsAffected > 0, res.Error
}
