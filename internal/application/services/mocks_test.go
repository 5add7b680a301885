package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

type mockHospitalRepository struct{ mock.Mock }

func (m *mockHospitalRepository) All(ctx context.Context) ([]*entities.Hospital, error) {
	args := m.Called(ctx)
	hs, _ := args.Get(0).([]*entities.Hospital)
	return hs, args.Error(1)
}

func (m *mockHospitalRepository) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*entities.Hospital)
	return h, args.Error(1)
}

func (m *mockHospitalRepository) Candidates(ctx context.Context, center geo.Point, radiusMiles float64) ([]*entities.Hospital, error) {
	args := m.Called(ctx, center, radiusMiles)
	hs, _ := args.Get(0).([]*entities.Hospital)
	return hs, args.Error(1)
}

type mockHospitalSearch struct{ mock.Mock }

func (m *mockHospitalSearch) Search(ctx context.Context, params repositories.HospitalSearchParams) ([]string, error) {
	args := m.Called(ctx, params)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockHospitalSearch) Index(ctx context.Context, hospitals []*entities.Hospital) error {
	return m.Called(ctx, hospitals).Error(0)
}

type mockPredictionRepository struct{ mock.Mock }

func (m *mockPredictionRepository) Create(ctx context.Context, p *entities.Prediction) (*entities.Prediction, error) {
	args := m.Called(ctx, p)
	if fn, ok := args.Get(0).(func(context.Context, *entities.Prediction) *entities.Prediction); ok {
		return fn(ctx, p), args.Error(1)
	}
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

type mockPosition struct{ mock.Mock }

func (m *mockPosition) RequestPermission(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockPosition) CurrentPosition(ctx context.Context) (*providers.Coordinates, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(*providers.Coordinates)
	return c, args.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(*providers.GeocodedAddress)
	return a, args.Error(1)
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	args := m.Called(ctx, lat, lon)
	a, _ := args.Get(0).(*providers.GeocodedAddress)
	return a, args.Error(1)
}
