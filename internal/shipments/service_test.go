package shipments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
	"github.com/shiptrack/shiptrack-backend/internal/users"
	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/db/dbtest"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
)

type fixture struct {
	client   *db.Client
	users    *users.Repository
	service  Service
	events   trackingevents.Service
	recorder *countingRecorder
}

type countingRecorder struct{ created int }

func (c *countingRecorder) ShipmentCreated() { c.created++ }

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	userRepo := users.NewRepository(client.DB())
	recorder := &countingRecorder{}

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		DB:       client,
		Managers: userRepo,
		Metrics:  recorder,
	})
	require.NoError(t, err)

	events, err := trackingevents.NewService(trackingevents.ServiceParams{
		Repo: trackingevents.NewRepository(client.DB()),
		DB:   client,
	})
	require.NoError(t, err)

	return fixture{client: client, users: userRepo, service: svc, events: events, recorder: recorder}
}

func createAdmin(t *testing.T, repo *users.Repository, email string, role enums.Role) *models.User {
	t.Helper()
	name := "Dispatch Lead"
	user, err := repo.Create(context.Background(), users.CreateUserDTO{Email: email, Name: &name, PasswordHash: "x", Role: role})
	require.NoError(t, err)
	return user
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

func TestCreateSeedsLabelCreatedEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentInput{
		TrackingNumber: "123456789012",
		FromLocation:   "Los Angeles, CA US",
		ToLocation:     "New York, NY US",
	})
	require.NoError(t, err)

	assert.Equal(t, "123456789012", created.TrackingNumber)
	assert.Equal(t, enums.ShipmentStatusPending, created.Status)
	assert.Equal(t, DefaultServiceType, created.ServiceType)
	assert.Equal(t, DefaultTerms, created.Terms)
	assert.Equal(t, DefaultPackaging, created.Packaging)
	assert.Equal(t, 1, created.TotalPieces)
	assert.False(t, created.SignatureRequired)
	assert.Nil(t, created.Manager)

	require.Len(t, created.Events, 1)
	seed := created.Events[0]
	assert.Equal(t, enums.EventTypeLabelCreated, seed.EventType)
	assert.Equal(t, 1, seed.Order)
	assert.Equal(t, enums.EventStatusCompleted, seed.Status)
	assert.Equal(t, "Los Angeles, CA US", seed.Location)
	assert.Equal(t, "Label Created", seed.Description)
	assert.Equal(t, 1, f.recorder.created)
}

func TestEndToEndTrackingTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentInput{
		TrackingNumber: "123456789012",
		FromLocation:   "Los Angeles, CA US",
		ToLocation:     "New York, NY US",
	})
	require.NoError(t, err)

	tracked, err := f.service.Track(ctx, "123456789012")
	require.NoError(t, err)
	require.Len(t, tracked.Events, 1)
	assert.Equal(t, enums.EventTypeLabelCreated, tracked.Events[0].EventType)
	assert.Equal(t, 1, tracked.Events[0].Order)
	assert.Equal(t, "Los Angeles, CA US", tracked.Events[0].Location)

	_, err = f.events.Append(ctx, created.ID, trackingevents.AppendEventInput{
		EventType: enums.EventTypeInTransit,
		Location:  "Denver, CO",
	})
	require.NoError(t, err)

	tracked, err = f.service.Track(ctx, "123456789012")
	require.NoError(t, err)
	require.Len(t, tracked.Events, 2)
	assert.Equal(t, enums.EventTypeLabelCreated, tracked.Events[0].EventType)
	assert.Equal(t, 1, tracked.Events[0].Order)
	assert.Equal(t, enums.EventTypeInTransit, tracked.Events[1].EventType)
	assert.Equal(t, 2, tracked.Events[1].Order)
}

func TestCreateDuplicateTrackingNumberConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original, err := f.service.Create(ctx, CreateShipmentInput{
		TrackingNumber: "882643599240",
		FromLocation:   "Atlanta, GA US",
		ToLocation:     "Boston, MA US",
	})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, CreateShipmentInput{
		TrackingNumber: "882643599240",
		FromLocation:   "Miami, FL US",
		ToLocation:     "Seattle, WA US",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, codeOf(err))

	list, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, original.ID, list[0].ID)
	assert.Equal(t, "Atlanta, GA US", list[0].FromLocation)
	assert.Len(t, list[0].Events, 1)
	assert.Equal(t, 1, f.recorder.created)
}

func TestConcurrentCreatesWithSameTrackingNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 10
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(ctx, CreateShipmentInput{
				TrackingNumber: "555555555555",
				FromLocation:   "Reno, NV US",
				ToLocation:     "Austin, TX US",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case codeOf(err) == pkgerrors.CodeConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)

	list, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Events, 1)
}

func TestCreateGeneratesTrackingNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentInput{FromLocation: "Memphis, TN US", ToLocation: "Denver, CO US"})
	require.NoError(t, err)
	assert.Regexp(t, `^[1-9][0-9]{11}$`, created.TrackingNumber)
}

func TestCreateRetriesTakenGeneratedNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateShipmentInput{TrackingNumber: "111111111111", FromLocation: "A", ToLocation: "B"})
	require.NoError(t, err)

	candidates := []string{"111111111111", "222222222222"}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(f.client.DB()),
		DB:       f.client,
		Managers: f.users,
		NewTrackingNumber: func() (string, error) {
			next := candidates[0]
			candidates = candidates[1:]
			return next, nil
		},
	})
	require.NoError(t, err)

	created, err := svc.Create(ctx, CreateShipmentInput{FromLocation: "C", ToLocation: "D"})
	require.NoError(t, err)
	assert.Equal(t, "222222222222", created.TrackingNumber)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zero := 0

	cases := map[string]CreateShipmentInput{
		"missing origin":      {ToLocation: "B"},
		"missing destination": {FromLocation: "A", ToLocation: "   "},
		"zero pieces":         {FromLocation: "A", ToLocation: "B", TotalPieces: &zero},
		"malformed number":    {TrackingNumber: "12 34", FromLocation: "A", ToLocation: "B"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Create(ctx, input)
			assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
		})
	}

	list, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateWithManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := createAdmin(t, f.users, "admin@fedex.com", enums.RoleAdmin)
	plain := createAdmin(t, f.users, "user@example.com", enums.RoleUser)

	created, err := f.service.Create(ctx, CreateShipmentInput{FromLocation: "A", ToLocation: "B", ManagerID: &admin.ID})
	require.NoError(t, err)
	require.NotNil(t, created.Manager)
	assert.Equal(t, "admin@fedex.com", created.Manager.Email)
	require.NotNil(t, created.ManagerID)
	assert.Equal(t, admin.ID, *created.ManagerID)

	public, err := f.service.Track(ctx, created.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, public.ID)

	_, err = f.service.Create(ctx, CreateShipmentInput{FromLocation: "A", ToLocation: "B", ManagerID: &plain.ID})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))

	missing := uuid.New()
	_, err = f.service.Create(ctx, CreateShipmentInput{FromLocation: "A", ToLocation: "B", ManagerID: &missing})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, CreateShipmentInput{TrackingNumber: "100000000001", FromLocation: "A", ToLocation: "B"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := f.service.Create(ctx, CreateShipmentInput{TrackingNumber: "100000000002", FromLocation: "C", ToLocation: "D"})
	require.NoError(t, err)

	list, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestGetMissingShipment(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))

	_, err = f.service.Track(context.Background(), "000000000000")
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))
}

func TestUpdateShipment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentInput{TrackingNumber: "987654321098", FromLocation: "A", ToLocation: "B"})
	require.NoError(t, err)

	status := enums.ShipmentStatusInTransit
	eta := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	signature := true
	pieces := 3
	weight := "12.5 lbs"
	updated, err := f.service.Update(ctx, created.ID, UpdateShipmentInput{
		Status:            &status,
		EstimatedDelivery: &eta,
		SignatureRequired: &signature,
		TotalPieces:       &pieces,
		Weight:            &weight,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.ShipmentStatusInTransit, updated.Status)
	require.NotNil(t, updated.EstimatedDelivery)
	assert.True(t, eta.Equal(*updated.EstimatedDelivery))
	assert.True(t, updated.SignatureRequired)
	assert.Equal(t, 3, updated.TotalPieces)
	require.NotNil(t, updated.Weight)
	assert.Equal(t, "12.5 lbs", *updated.Weight)

	assert.Equal(t, "987654321098", updated.TrackingNumber, "tracking number is immutable")
	assert.Equal(t, DefaultServiceType, updated.ServiceType, "unspecified fields stay unchanged")
	require.Len(t, updated.Events, 1, "status changes do not append events")
}

func TestUpdateClearsEstimatedDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	eta := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	created, err := f.service.Create(ctx, CreateShipmentInput{FromLocation: "A", ToLocation: "B", EstimatedDelivery: &eta})
	require.NoError(t, err)
	require.NotNil(t, created.EstimatedDelivery)

	terms := "prepaid"
	kept, err := f.service.Update(ctx, created.ID, UpdateShipmentInput{Terms: &terms})
	require.NoError(t, err)
	require.NotNil(t, kept.EstimatedDelivery, "other updates leave the date alone")
	assert.True(t, eta.Equal(*kept.EstimatedDelivery))

	cleared, err := f.service.Update(ctx, created.ID, UpdateShipmentInput{ClearEstimatedDelivery: true, EstimatedDelivery: &eta})
	require.NoError(t, err)
	assert.Nil(t, cleared.EstimatedDelivery)

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EstimatedDelivery)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentInput{FromLocation: "A", ToLocation: "B"})
	require.NoError(t, err)

	bogus := enums.ShipmentStatus("lost_at_sea")
	_, err = f.service.Update(ctx, created.ID, UpdateShipmentInput{Status: &bogus})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusPending, got.Status)
}

func TestUpdateMissingShipment(t *testing.T) {
	f := newFixture(t)
	status := enums.ShipmentStatusDelivered
	_, err := f.service.Update(context.Background(), uuid.New(), UpdateShipmentInput{Status: &status})
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))

	_, err = f.service.Update(context.Background(), uuid.New(), UpdateShipmentInput{})
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))
}

func TestDeleteCascadesEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentInput{FromLocation: "A", ToLocation: "B"})
	require.NoError(t, err)
	_, err = f.events.Append(ctx, created.ID, trackingevents.AppendEventInput{EventType: "in_transit", Location: "C"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, created.ID))

	var remaining int64
	require.NoError(t, f.client.DB().Model(&models.TrackingEvent{}).Where("shipment_id = ?", created.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err = f.service.Get(ctx, created.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))

	err = f.service.Delete(ctx, created.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestGenerateTrackingNumber(t *testing.T) {
	for i := 0; i < 50; i++ {
		n, err := GenerateTrackingNumber()
		require.NoError(t, err)
		assert.Len(t, n, 12)
		assert.NotEqual(t, byte('0'), n[0])
	}
}
