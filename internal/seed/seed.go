// Package seed loads the bootstrap accounts and the demo shipments.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shiptrack/shiptrack-backend/internal/shipments"
	"github.com/shiptrack/shiptrack-backend/internal/users"
	"github.com/shiptrack/shiptrack-backend/pkg/config"
	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
	"github.com/shiptrack/shiptrack-backend/pkg/security"
)

const (
	adminName = "Admin User"
	userName  = "John Doe"
)

// Result summarizes what a run wrote.
type Result struct {
	Users            int
	ShipmentsCreated []string
	ShipmentsSkipped []string
}

// Params configures a Seeder.
type Params struct {
	DB       *db.Client
	Logger   *logger.Logger
	Password config.PasswordConfig
	Accounts config.SeedConfig
}

// Seeder upserts the bootstrap accounts and inserts the sample shipments.
type Seeder struct {
	db       *db.Client
	logg     *logger.Logger
	password config.PasswordConfig
	accounts config.SeedConfig
}

// New validates params and returns a Seeder.
func New(params Params) (*Seeder, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Accounts.AdminPassword == "" || params.Accounts.UserPassword == "" {
		return nil, fmt.Errorf("seed passwords are required")
	}
	return &Seeder{
		db:       params.DB,
		logg:     params.Logger,
		password: params.Password,
		accounts: params.Accounts,
	}, nil
}

// Run seeds accounts first, then every sample shipment in its own
// transaction. Failures are collected so one bad shipment does not block the rest.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := s.seedAccounts(ctx, result); err != nil {
		return result, err
	}

	var errs error
	for _, fixture := range sampleShipments {
		created, err := s.seedShipment(ctx, fixture)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shipment %s: %w", fixture.trackingNumber, err))
			continue
		}
		if created {
			result.ShipmentsCreated = append(result.ShipmentsCreated, fixture.trackingNumber)
			s.logg.Info(s.logg.WithField(ctx, "tracking_number", fixture.trackingNumber), "seed.shipment.created")
		} else {
			result.ShipmentsSkipped = append(result.ShipmentsSkipped, fixture.trackingNumber)
			s.logg.Info(s.logg.WithField(ctx, "tracking_number", fixture.trackingNumber), "seed.shipment.skipped")
		}
	}
	return result, errs
}

func (s *Seeder) seedAccounts(ctx context.Context, result *Result) error {
	accounts := []struct {
		email    string
		name     string
		password string
		role     enums.Role
	}{
		{email: s.accounts.AdminEmail, name: adminName, password: s.accounts.AdminPassword, role: enums.RoleAdmin},
		{email: s.accounts.UserEmail, name: userName, password: s.accounts.UserPassword, role: enums.RoleUser},
	}

	repo := users.NewRepository(s.db.DB())
	for _, acct := range accounts {
		hash, err := security.HashPassword(acct.password, s.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", acct.email, err)
		}
		name := acct.name
		user, err := repo.UpsertByEmail(ctx, users.CreateUserDTO{
			Email:        acct.email,
			Name:         &name,
			PasswordHash: hash,
			Role:         acct.role,
		})
		if err != nil {
			return fmt.Errorf("upsert %s: %w", acct.email, err)
		}
		result.Users++
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"email": user.Email, "role": string(user.Role)}), "seed.user.upserted")
	}
	return nil
}

func (s *Seeder) seedShipment(ctx context.Context, fixture shipmentFixture) (bool, error) {
	created := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := shipments.NewRepository(tx)

		exists, err := repo.ExistsByTrackingNumber(ctx, fixture.trackingNumber)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		eta := mustTime(time.DateOnly, fixture.estimatedDelivery)
		start, end := fixture.windowStart, fixture.windowEnd
		shipment := &models.Shipment{
			TrackingNumber:    fixture.trackingNumber,
			Status:            fixture.status,
			FromLocation:      fixture.from,
			ToLocation:        fixture.to,
			EstimatedDelivery: &eta,
			DeliveryStartTime: &start,
			DeliveryEndTime:   &end,
			SignatureRequired: fixture.signatureRequired,
			ServiceType:       shipments.DefaultServiceType,
			Terms:             shipments.DefaultTerms,
			TotalPieces:       shipments.DefaultTotalPieces,
			Packaging:         shipments.DefaultPackaging,
		}
		if err := repo.Create(ctx, shipment); err != nil {
			return err
		}

		for i, ev := range fixture.events {
			event := &models.TrackingEvent{
				ShipmentID:  shipment.ID,
				EventType:   ev.eventType,
				Location:    ev.location,
				Description: ev.description,
				Status:      enums.EventStatusCompleted,
				Order:       i + 1,
				Timestamp:   mustTime(time.RFC3339, ev.at),
			}
			if err := repo.CreateEvent(ctx, event); err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	return created, err
}
