package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiptrack/shiptrack-backend/api/controllers"
	"github.com/shiptrack/shiptrack-backend/internal/auth"
	"github.com/shiptrack/shiptrack-backend/internal/shipments"
	"github.com/shiptrack/shiptrack-backend/internal/trackingevents"
	pkgAuth "github.com/shiptrack/shiptrack-backend/pkg/auth"
	"github.com/shiptrack/shiptrack-backend/pkg/config"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
	"github.com/shiptrack/shiptrack-backend/pkg/logger"
	"github.com/shiptrack/shiptrack-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[scope]++
	count := s.counts[scope]
	return count <= limit, count, nil
}

type stubAuth struct{}

func (stubAuth) Authenticate(context.Context, string, string) (*auth.Principal, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuth) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuth) Logout(context.Context, string) error { return nil }

func (stubAuth) Refresh(context.Context, string, string) (*auth.RefreshResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
}

type stubSignup struct{}

func (stubSignup) Signup(context.Context, auth.SignupRequest) (*auth.SignupResponse, error) {
	return &auth.SignupResponse{Message: "user created successfully"}, nil
}

type stubShipments struct{}

func (stubShipments) List(context.Context) ([]shipments.ShipmentDTO, error) {
	return []shipments.ShipmentDTO{}, nil
}

func (stubShipments) Create(context.Context, shipments.CreateShipmentInput) (*shipments.ShipmentDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not used")
}

func (stubShipments) Get(context.Context, uuid.UUID) (*shipments.ShipmentDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func (stubShipments) Track(context.Context, string) (*shipments.PublicShipmentDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func (stubShipments) Update(context.Context, uuid.UUID, shipments.UpdateShipmentInput) (*shipments.ShipmentDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func (stubShipments) Delete(context.Context, uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

type stubEvents struct{}

func (stubEvents) List(context.Context, uuid.UUID) ([]trackingevents.TrackingEventDTO, error) {
	return []trackingevents.TrackingEventDTO{}, nil
}

func (stubEvents) Append(context.Context, uuid.UUID, trackingevents.AppendEventInput) (*trackingevents.TrackingEventDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "shiptrack", ExpirationMinutes: 60},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:      time.Minute,
			LoginEmailLimit:  2,
			LoginIPLimit:     100,
			SignupWindow:     time.Minute,
			SignupEmailLimit: 2,
			SignupIPLimit:    100,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(Params{
		Config:          cfg,
		Logger:          logger.Nop(),
		Sessions:        stubSessions{},
		RateLimiter:     &stubLimiter{},
		Readiness:       map[string]controllers.Pinger{"db": stubPinger{}},
		AuthService:     stubAuth{},
		SignupService:   stubSignup{},
		ShipmentsSvc:    stubShipments{},
		EventsSvc:       stubEvents{},
		HTTPMetrics:     metrics.NewHTTPMetrics(reg),
		MetricsGatherer: reg,
	})
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func do(router http.Handler, method, target, body, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutesArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig())

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/health/ready", "", "").Code)
}

func TestTrackRouteIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := do(router, http.MethodGet, "/track/UNKNOWN", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShipmentRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := do(router, http.MethodGet, "/shipments", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShipmentRoutesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	rec := do(router, http.MethodGet, "/shipments", "", bearer(t, cfg, enums.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShipmentRoutesServeAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	token := bearer(t, cfg, enums.RoleAdmin)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/shipments", "", token).Code)

	id := uuid.NewString()
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/shipments/"+id, "", token).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/shipments/"+id+"/events", "", token).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/shipments/"+id, "", token).Code)
}

func TestLoginIsRateLimitedPerEmail(t *testing.T) {
	router := newTestRouter(t, testConfig())
	body := `{"email":"admin@example.com","password":"wrong"}`

	for i := 0; i < 2; i++ {
		rec := do(router, http.MethodPost, "/auth/login", body, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(router, http.MethodPost, "/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSignupRouteCreatesUser(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := do(router, http.MethodPost, "/auth/signup", `{"name":"Jane","email":"jane@example.com","password":"longenough123"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMetricsEndpointExposesRequestCounters(t *testing.T) {
	router := newTestRouter(t, testConfig())

	do(router, http.MethodGet, "/health/live", "", "")
	rec := do(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/health/live"`)
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := do(router, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
