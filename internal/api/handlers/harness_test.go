package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/adapters/cache"
	"github.com/zatekoja/woundtrack/internal/adapters/directory"
	"github.com/zatekoja/woundtrack/internal/adapters/events"
	"github.com/zatekoja/woundtrack/internal/adapters/providers/geolocation"
	"github.com/zatekoja/woundtrack/internal/api/handlers"
	"github.com/zatekoja/woundtrack/internal/api/routes"
	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/application/session"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) Login(ctx context.Context, identifier, password string) (*entities.Session, error) {
	args := m.Called(ctx, identifier, password)
	s, _ := args.Get(0).(*entities.Session)
	return s, args.Error(1)
}

func (m *mockUserRepository) Register(ctx context.Context, username, email, password string) (*entities.Session, error) {
	args := m.Called(ctx, username, email, password)
	s, _ := args.Get(0).(*entities.Session)
	return s, args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entities.User)
	return u, args.Error(1)
}

type mockPredictionRepository struct{ mock.Mock }

func (m *mockPredictionRepository) Create(ctx context.Context, p *entities.Prediction) (*entities.Prediction, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*entities.Prediction)
	return out, args.Error(1)
}

func (m *mockPredictionRepository) GetByID(ctx context.Context, id string) (*entities.Prediction, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entities.Prediction)
	return out, args.Error(1)
}

func (m *mockPredictionRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entities.Prediction)
	return out, args.Error(1)
}

func (m *mockPredictionRepository) ListAll(ctx context.Context) ([]*entities.Prediction, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*entities.Prediction)
	return out, args.Error(1)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) Upload(ctx context.Context, image *entities.ImageUpload) (entities.ImageRef, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(entities.ImageRef), args.Error(1)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, image *entities.ImageUpload) (*entities.Classification, error) {
	args := m.Called(ctx, image)
	c, _ := args.Get(0).(*entities.Classification)
	return c, args.Error(1)
}

func (m *mockClassifier) Health(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type harness struct {
	handler     http.Handler
	users       *mockUserRepository
	images      *mockImageStore
	classifier  *mockClassifier
	predictions *mockPredictionRepository
	manager     *session.Manager
	bus         *events.MemoryEventBus
}

// newHarness wires the real services and router around mocked upstreams.
// The device sits in San Francisco.
func newHarness(t *testing.T, locationGranted bool) *harness {
	t.Helper()

	hospitals, err := directory.LoadHospitals("")
	require.NoError(t, err)
	repo, err := directory.NewStaticRepository(hospitals)
	require.NoError(t, err)

	h := &harness{
		users:       &mockUserRepository{},
		images:      &mockImageStore{},
		classifier:  &mockClassifier{},
		predictions: &mockPredictionRepository{},
		manager:     session.NewManager(session.NewCacheStore(cache.NewMemoryAdapter(16))),
		bus:         events.NewMemoryEventBus(),
	}

	locations := services.NewLocationService(
		geolocation.NewStaticPositionProvider(37.7749, -122.4194, locationGranted),
		geolocation.NewMockGeolocationProvider(),
	)
	hospitalSvc := services.NewHospitalService(repo, nil, services.DefaultDirectoryOptions())
	auth := services.NewAuthService(h.users, h.manager)
	predictionSvc := services.NewPredictionService(h.images, h.classifier, h.predictions).WithEventBus(h.bus)
	history := services.NewHistoryService(h.predictions, cache.NewMemoryAdapter(16), nil)

	router := routes.NewRouter(routes.Handlers{
		Health:     handlers.NewHealthHandler(predictionSvc),
		Auth:       handlers.NewAuthHandler(auth),
		Location:   handlers.NewLocationHandler(locations),
		Hospital:   handlers.NewHospitalHandler(hospitalSvc, locations),
		Prediction: handlers.NewPredictionHandler(predictionSvc, history, auth),
		SSE:        handlers.NewSSEHandler(h.bus, auth),
	}, []string{"*"}, nil)
	h.handler = router.SetupRoutes()
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, h.manager.Set(context.Background(), &entities.Session{
		Token: "opaque",
		User:  entities.User{ID: "7", Username: "nurse", Email: "nurse@example.com"},
	}))
}
