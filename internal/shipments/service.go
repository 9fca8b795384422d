package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
)

const (
	DefaultServiceType = "FedEx Ground"
	DefaultTerms       = "Third Party"
	DefaultPackaging   = "Package"
	DefaultTotalPieces = 1

	seedEventDescription = "Label Created"

	maxTrackingNumberLength = 64
	maxGenerateAttempts     = 5
)

// Service exposes shipment administration and the public tracking lookup.
type Service interface {
	List(ctx context.Context) ([]ShipmentDTO, error)
	Create(ctx context.Context, input CreateShipmentInput) (*ShipmentDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ShipmentDTO, error)
	Track(ctx context.Context, trackingNumber string) (*PublicShipmentDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateShipmentInput) (*ShipmentDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type managerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type creationRecorder interface {
	ShipmentCreated()
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Repo     *Repository
	DB       *db.Client
	Managers managerLookup
	Metrics  creationRecorder
	Now      func() time.Time
	// NewTrackingNumber overrides GenerateTrackingNumber in tests.
	NewTrackingNumber func() (string, error)
}

type service struct {
	repo              *Repository
	db                *db.Client
	managers          managerLookup
	metrics           creationRecorder
	now               func() time.Time
	newTrackingNumber func() (string, error)
}

// NewService constructs the shipment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("shipment repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Managers == nil {
		return nil, fmt.Errorf("manager lookup required")
	}
	svc := &service{
		repo:              params.Repo,
		db:                params.DB,
		managers:          params.Managers,
		metrics:           params.Metrics,
		now:               params.Now,
		newTrackingNumber: params.NewTrackingNumber,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newTrackingNumber == nil {
		svc.newTrackingNumber = GenerateTrackingNumber
	}
	return svc, nil
}

func (s *service) List(ctx context.Context) ([]ShipmentDTO, error) {
	shipments, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipments")
	}
	out := make([]ShipmentDTO, 0, len(shipments))
	for i := range shipments {
		out = append(out, *NewShipmentDTO(&shipments[i]))
	}
	return out, nil
}

// Create inserts the shipment and its label_created seed event in one
// transaction, so a shipment without a timeline is never visible.
func (s *service) Create(ctx context.Context, input CreateShipmentInput) (*ShipmentDTO, error) {
	shipment, err := buildShipment(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureManager(ctx, input.ManagerID); err != nil {
		return nil, err
	}

	trackingNumber, err := s.resolveTrackingNumber(ctx, input.TrackingNumber)
	if err != nil {
		return nil, err
	}
	shipment.TrackingNumber = trackingNumber

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, shipment); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tracking number already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert shipment")
		}
		seed := &models.TrackingEvent{
			ShipmentID:  shipment.ID,
			EventType:   enums.EventTypeLabelCreated,
			Location:    shipment.FromLocation,
			Description: seedEventDescription,
			Status:      enums.EventStatusCompleted,
			Order:       1,
			Timestamp:   s.now().UTC(),
		}
		if err := txRepo.CreateEvent(ctx, seed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert seed tracking event")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shipment")
	}

	if s.metrics != nil {
		s.metrics.ShipmentCreated()
	}
	return s.Get(ctx, shipment.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ShipmentDTO, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "load shipment")
	}
	return NewShipmentDTO(shipment), nil
}

func (s *service) Track(ctx context.Context, trackingNumber string) (*PublicShipmentDTO, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, notFoundOrInternal(err, "load shipment by tracking number")
	}
	return NewPublicShipmentDTO(shipment), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateShipmentInput) (*ShipmentDTO, error) {
	updates, err := buildUpdates(input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.FindByID(ctx, id); err != nil {
			return notFoundOrInternal(err, "load shipment")
		}
		if len(updates) == 0 {
			return nil
		}
		if _, err := txRepo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shipment")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shipment")
	}
	return s.Get(ctx, id)
}

// Delete removes the shipment; its events go with it in the same transaction.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shipment")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil
	})
	if err != nil && pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shipment")
	}
	return err
}

func (s *service) ensureManager(ctx context.Context, managerID *uuid.UUID) error {
	if managerID == nil {
		return nil
	}
	manager, err := s.managers.FindByID(ctx, *managerID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeValidation, "manager not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load manager")
	}
	if manager.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeValidation, "manager must be an admin")
	}
	return nil
}

// resolveTrackingNumber validates a supplied number or generates a free one.
// Uniqueness is still enforced by the index at insert time.
func (s *service) resolveTrackingNumber(ctx context.Context, supplied string) (string, error) {
	supplied = strings.TrimSpace(supplied)
	if supplied != "" {
		if len(supplied) > maxTrackingNumberLength || strings.ContainsAny(supplied, " \t\r\n") {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "tracking number is malformed")
		}
		taken, err := s.repo.ExistsByTrackingNumber(ctx, supplied)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check tracking number")
		}
		if taken {
			return "", pkgerrors.New(pkgerrors.CodeConflict, "tracking number already exists")
		}
		return supplied, nil
	}

	for i := 0; i < maxGenerateAttempts; i++ {
		candidate, err := s.newTrackingNumber()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tracking number")
		}
		taken, err := s.repo.ExistsByTrackingNumber(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check tracking number")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a free tracking number")
}

func buildShipment(input CreateShipmentInput) (*models.Shipment, error) {
	from := strings.TrimSpace(input.FromLocation)
	to := strings.TrimSpace(input.ToLocation)
	if from == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from_location is required")
	}
	if to == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to_location is required")
	}

	pieces := DefaultTotalPieces
	if input.TotalPieces != nil {
		if *input.TotalPieces < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_pieces must be at least 1")
		}
		pieces = *input.TotalPieces
	}

	shipment := &models.Shipment{
		Status:            enums.ShipmentStatusPending,
		FromLocation:      from,
		ToLocation:        to,
		EstimatedDelivery: utcPtr(input.EstimatedDelivery),
		DeliveryStartTime: nonEmpty(input.DeliveryStartTime),
		DeliveryEndTime:   nonEmpty(input.DeliveryEndTime),
		ServiceType:       valueOr(input.ServiceType, DefaultServiceType),
		Terms:             valueOr(input.Terms, DefaultTerms),
		Weight:            nonEmpty(input.Weight),
		Dimensions:        nonEmpty(input.Dimensions),
		TotalPieces:       pieces,
		Packaging:         valueOr(input.Packaging, DefaultPackaging),
		ManagerID:         input.ManagerID,
	}
	if input.SignatureRequired != nil {
		shipment.SignatureRequired = *input.SignatureRequired
	}
	return shipment, nil
}

func buildUpdates(input UpdateShipmentInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.isEmpty() {
		return updates, nil
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", *input.Status))
		}
		updates["status"] = *input.Status
	}
	if input.TotalPieces != nil {
		if *input.TotalPieces < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_pieces must be at least 1")
		}
		updates["total_pieces"] = *input.TotalPieces
	}
	switch {
	case input.ClearEstimatedDelivery:
		updates["estimated_delivery"] = nil
	case input.EstimatedDelivery != nil:
		updates["estimated_delivery"] = input.EstimatedDelivery.UTC()
	}
	if input.DeliveryStartTime != nil {
		updates["delivery_start_time"] = nonEmpty(input.DeliveryStartTime)
	}
	if input.DeliveryEndTime != nil {
		updates["delivery_end_time"] = nonEmpty(input.DeliveryEndTime)
	}
	if input.SignatureRequired != nil {
		updates["signature_required"] = *input.SignatureRequired
	}
	if input.ServiceType != nil {
		updates["service_type"] = valueOr(input.ServiceType, DefaultServiceType)
	}
	if input.Terms != nil {
		updates["terms"] = valueOr(input.Terms, DefaultTerms)
	}
	if input.Packaging != nil {
		updates["packaging"] = valueOr(input.Packaging, DefaultPackaging)
	}
	if input.Weight != nil {
		updates["weight"] = nonEmpty(input.Weight)
	}
	if input.Dimensions != nil {
		updates["dimensions"] = nonEmpty(input.Dimensions)
	}
	return updates, nil
}

func notFoundOrInternal(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func valueOr(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return strings.TrimSpace(*value)
}

// nonEmpty maps blank strings to nil so optional columns stay NULL.
func nonEmpty(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
