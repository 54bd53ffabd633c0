package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/internal/services"
	"github.com/wanderbook/apiserver/internal/store"
	"github.com/wanderbook/apiserver/types"
)

// mockTripRepo is a test double for services.TripRepository. Set only
// the method fields your test needs.
type mockTripRepo struct {
	list        func(ctx context.Context) ([]types.Trip, error)
	get         func(ctx context.Context, id string) (types.Trip, error)
	create      func(ctx context.Context, trip types.Trip) (types.Trip, error)
	update      func(ctx context.Context, trip types.Trip) (types.Trip, error)
	delete      func(ctx context.Context, id string) error
	hasBookings func(ctx context.Context, tripID string) (bool, error)
}

func (m *mockTripRepo) List(ctx context.Context) ([]types.Trip, error) { return m.list(ctx) }
func (m *mockTripRepo) Get(ctx context.Context, id string) (types.Trip, error) {
	return m.get(ctx, id)
}
func (m *mockTripRepo) Create(ctx context.Context, trip types.Trip) (types.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) Update(ctx context.Context, trip types.Trip) (types.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id string) error { return m.delete(ctx, id) }
func (m *mockTripRepo) HasBookings(ctx context.Context, tripID string) (bool, error) {
	return m.hasBookings(ctx, tripID)
}

var _ services.TripRepository = (*mockTripRepo)(nil)

// mockImageStore records puts in memory.
type mockImageStore struct {
	objects map[string][]byte
	err     error
}

func (m *mockImageStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

var _ services.ImageStore = (*mockImageStore)(nil)

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		PublicPrefix: "/uploads",
		DefaultImage: "/uploads/default_image.jpg",
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"plain integer", "100", 100, false},
		{"decimal point", "49.99", 49.99, false},
		{"surrounding whitespace", " 12.5 ", 12.5, false},
		{"zero", "0", 0, false},
		{"empty", "", 0, true},
		{"comma separator", "49,99", 0, true},
		{"grouping separator", "1,000.00", 0, true},
		{"underscore", "1_000", 0, true},
		{"inner space", "1 000", 0, true},
		{"negative", "-5", 0, true},
		{"not a number", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.ParsePrice(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, services.ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateTrip_usesDefaultImageWithoutUpload(t *testing.T) {
	repo := &mockTripRepo{
		create: func(ctx context.Context, trip types.Trip) (types.Trip, error) {
			return trip, nil
		},
	}
	svc := services.NewTripService(repo, nil, testStorageConfig())

	trip, err := svc.Create(context.Background(), services.TripInput{
		Destination: "Lisbon",
		Description: "A week on the coast.",
		Price:       100,
	}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, "/uploads/default_image.jpg", trip.ImagePath)
}

func TestCreateTrip_storesUploadedImage(t *testing.T) {
	repo := &mockTripRepo{
		create: func(ctx context.Context, trip types.Trip) (types.Trip, error) {
			return trip, nil
		},
	}
	images := &mockImageStore{}
	svc := services.NewTripService(repo, images, testStorageConfig())

	trip, err := svc.Create(context.Background(), services.TripInput{
		Destination: "Lisbon",
		Description: "A week on the coast.",
		Price:       100,
	}, &services.ImageUpload{
		Filename:    "beach.jpg",
		Data:        []byte{0xFF, 0xD8, 0xFF},
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	require.Len(t, images.objects, 1)
	assert.True(t, strings.HasPrefix(trip.ImagePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(trip.ImagePath, "_beach.jpg"))
	// The stored key must carry the uuid prefix so concurrent uploads of
	// the same filename never collide.
	for key := range images.objects {
		assert.NotEqual(t, "beach.jpg", key)
		assert.True(t, strings.HasSuffix(key, "_beach.jpg"))
	}
}

func TestCreateTrip_validation(t *testing.T) {
	svc := services.NewTripService(&mockTripRepo{}, nil, testStorageConfig())

	tests := []struct {
		name  string
		input services.TripInput
	}{
		{"missing destination", services.TripInput{Description: "desc", Price: 10}},
		{"missing description", services.TripInput{Destination: "Lisbon", Price: 10}},
		{"negative price", services.TripInput{Destination: "Lisbon", Description: "desc", Price: -1}},
		{"description too long", services.TripInput{
			Destination: "Lisbon",
			Description: strings.Repeat("x", types.MaxTripDescriptionLength+1),
			Price:       10,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input, nil)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestUpdateTrip_invalidPriceMutatesNothing(t *testing.T) {
	touched := false
	repo := &mockTripRepo{
		get: func(ctx context.Context, id string) (types.Trip, error) {
			touched = true
			return types.Trip{}, nil
		},
		update: func(ctx context.Context, trip types.Trip) (types.Trip, error) {
			touched = true
			return trip, nil
		},
	}
	svc := services.NewTripService(repo, nil, testStorageConfig())

	_, err := svc.Update(context.Background(), services.TripUpdateInput{
		ID:          "t1",
		Destination: "Lisbon",
		Description: "desc",
		Price:       "49,99",
	}, nil)

	assert.ErrorIs(t, err, services.ErrInvalidPrice)
	assert.False(t, touched)
}

func TestUpdateTrip_appliesAllFields(t *testing.T) {
	existing := types.Trip{
		ID:          "t1",
		Destination: "Lisbon",
		Description: "old",
		Price:       100,
		ImagePath:   "/uploads/old.jpg",
	}
	var saved types.Trip
	repo := &mockTripRepo{
		get: func(ctx context.Context, id string) (types.Trip, error) {
			return existing, nil
		},
		update: func(ctx context.Context, trip types.Trip) (types.Trip, error) {
			saved = trip
			return trip, nil
		},
	}
	svc := services.NewTripService(repo, nil, testStorageConfig())

	updated, err := svc.Update(context.Background(), services.TripUpdateInput{
		ID:          "t1",
		Destination: "Porto",
		Description: "new",
		Price:       "150.00",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Porto", saved.Destination)
	assert.Equal(t, 150.0, saved.Price)
	// No new upload keeps the existing image.
	assert.Equal(t, "/uploads/old.jpg", updated.ImagePath)
}

func TestUpdateTrip_missingTrip(t *testing.T) {
	repo := &mockTripRepo{
		get: func(ctx context.Context, id string) (types.Trip, error) {
			return types.Trip{}, store.ErrNotFound
		},
	}
	svc := services.NewTripService(repo, nil, testStorageConfig())

	_, err := svc.Update(context.Background(), services.TripUpdateInput{
		ID:          "missing",
		Destination: "Porto",
		Description: "new",
		Price:       "150.00",
	}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTrip_blockedByBookings(t *testing.T) {
	deleted := false
	repo := &mockTripRepo{
		hasBookings: func(ctx context.Context, tripID string) (bool, error) { return true, nil },
		delete: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := services.NewTripService(repo, nil, testStorageConfig())

	err := svc.Delete(context.Background(), "t1")
	assert.ErrorIs(t, err, services.ErrTripHasBookings)
	assert.False(t, deleted)
}

func TestDeleteTrip_freeTrip(t *testing.T) {
	repo := &mockTripRepo{
		hasBookings: func(ctx context.Context, tripID string) (bool, error) { return false, nil },
		delete:      func(ctx context.Context, id string) error { return nil },
	}
	svc := services.NewTripService(repo, nil, testStorageConfig())

	assert.NoError(t, svc.Delete(context.Background(), "t1"))
}
