package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiptrack/shiptrack-backend/internal/shipments"
	"github.com/shiptrack/shiptrack-backend/internal/users"
	"github.com/shiptrack/shiptrack-backend/pkg/config"
	"github.com/shiptrack/shiptrack-backend/pkg/db/dbtest"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
	"github.com/shiptrack/shiptrack-backend/pkg/security"
)

func testParams(t *testing.T) Params {
	t.Helper()
	return Params{
		DB:     dbtest.Open(t),
		Logger: logger.Nop(),
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Accounts: config.SeedConfig{
			AdminEmail:    "admin@fedex.com",
			AdminPassword: "admin-password-123",
			UserEmail:     "user@example.com",
			UserPassword:  "user-password-123",
		},
	}
}

func TestRunSeedsAccountsAndShipments(t *testing.T) {
	params := testParams(t)
	seeder, err := New(params)
	require.NoError(t, err)

	result, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Users)
	assert.ElementsMatch(t, []string{"882643599240", "123456789012", "987654321098"}, result.ShipmentsCreated)
	assert.Empty(t, result.ShipmentsSkipped)

	userRepo := users.NewRepository(params.DB.DB())
	admin, err := userRepo.FindByEmail(context.Background(), "admin@fedex.com")
	require.NoError(t, err)
	assert.Equal(t, enums.RoleAdmin, admin.Role)
	ok, err := security.VerifyPassword("admin-password-123", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	regular, err := userRepo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.RoleUser, regular.Role)

	shipmentRepo := shipments.NewRepository(params.DB.DB())
	delivered, err := shipmentRepo.FindByTrackingNumber(context.Background(), "987654321098")
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusDelivered, delivered.Status)
	require.Len(t, delivered.Events, 5)
	for i, ev := range delivered.Events {
		assert.Equal(t, i+1, ev.Order)
	}
	assert.Equal(t, enums.EventTypeLabelCreated, delivered.Events[0].EventType)
	assert.Equal(t, enums.EventTypeDelivered, delivered.Events[4].EventType)
	assert.Equal(t, 2024, delivered.Events[4].Timestamp.Year())
}

func TestRunIsRepeatable(t *testing.T) {
	params := testParams(t)
	seeder, err := New(params)
	require.NoError(t, err)

	_, err = seeder.Run(context.Background())
	require.NoError(t, err)

	result, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.ShipmentsCreated)
	assert.Len(t, result.ShipmentsSkipped, 3)

	var userCount, events int64
	require.NoError(t, params.DB.DB().Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, params.DB.DB().Model(&models.TrackingEvent{}).Count(&events).Error)
	assert.EqualValues(t, 2, userCount)
	assert.EqualValues(t, 10, events)
}

func TestNewRequiresPasswords(t *testing.T) {
	params := testParams(t)
	params.Accounts.UserPassword = ""
	_, err := New(params)
	assert.Error(t, err)
}
