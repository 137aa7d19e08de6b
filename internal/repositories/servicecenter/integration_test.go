package servicecenter_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sequoia/internal/repositories/servicecenter"
	"github.com/Ramsey-B/sequoia/pkg/database"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "sequoia"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

func strPtr(s string) *string {
	return &s
}

func newTestCenter(suffix string) *models.ServiceCenter {
	return &models.ServiceCenter{
		CenterID:        "SC-TEST-" + suffix,
		Name:            "Test Center " + suffix,
		Location:        "Nagoya",
		Phone:           "+81-52-000-0000",
		Capacity:        2,
		Specializations: []string{"Engine", "Brakes"},
		Bookings:        []models.Booking{},
		IsActive:        true,
	}
}

func TestServiceCenterRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := servicecenter.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	center := newTestCenter(suffix)

	created, err := repo.Create(ctx, center)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	fetched, err := repo.GetByCenterID(ctx, center.CenterID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, center.CenterID, fetched.CenterID)
	assert.Equal(t, center.Name, fetched.Name)
	assert.Equal(t, []string{"Engine", "Brakes"}, fetched.Specializations)
	assert.Empty(t, fetched.Bookings)
	assert.True(t, fetched.IsActive)

	missing, err := repo.GetByCenterID(ctx, "SC-DOES-NOT-EXIST")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestServiceCenterRepository_GetByName(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := servicecenter.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	center := newTestCenter(suffix)

	_, err := repo.Create(ctx, center)
	require.NoError(t, err)

	// Exact name, any case
	fetched, err := repo.GetByName(ctx, strings.ToUpper(center.Name))
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, center.CenterID, fetched.CenterID)

	// Substrings do not match
	partial, err := repo.GetByName(ctx, "Test Center")
	require.NoError(t, err)
	assert.Nil(t, partial)
}

func TestServiceCenterRepository_DuplicateCenterID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := servicecenter.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	center := newTestCenter(suffix)

	_, err := repo.Create(ctx, center)
	require.NoError(t, err)

	dupe := newTestCenter(suffix)
	_, err = repo.Create(ctx, dupe)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateKey(err))
	assert.Equal(t, "Center ID already exists", err.Error())
}

func TestServiceCenterRepository_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := servicecenter.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	center := newTestCenter(suffix)

	_, err := repo.Create(ctx, center)
	require.NoError(t, err)

	centers, err := repo.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(centers), 1)

	found := false
	for _, candidate := range centers {
		if candidate.CenterID == center.CenterID {
			found = true
			break
		}
	}
	assert.True(t, found, "expected created center in list")
}

func TestServiceCenterRepository_AppendBooking(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := servicecenter.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	center := newTestCenter(suffix)

	_, err := repo.Create(ctx, center)
	require.NoError(t, err)

	booking := models.Booking{
		BookingID:       "BK-" + suffix,
		VehicleID:       "VH-1001",
		Issue:           "Brake pads worn through early",
		PartRequired:    strPtr("Brake Pad Set"),
		Date:            "2024-03-18",
		Status:          models.BookingStatusScheduled,
		ReplacedPartSKU: strPtr("90919-01191"),
		FailureType:     models.FailureTypePremature,
		SourceBatchID:   strPtr("BATCH-TEST-" + suffix),
	}

	appended, err := repo.AppendBooking(ctx, center.CenterID, booking)
	require.NoError(t, err)
	assert.True(t, appended)

	fetched, err := repo.GetByCenterID(ctx, center.CenterID)
	require.NoError(t, err)
	require.Len(t, fetched.Bookings, 1)

	// RCA linkage comes back exactly as submitted
	stored := fetched.Bookings[0]
	assert.Equal(t, booking.BookingID, stored.BookingID)
	assert.Equal(t, booking.VehicleID, stored.VehicleID)
	assert.Equal(t, models.BookingStatusScheduled, stored.Status)
	require.NotNil(t, stored.ReplacedPartSKU)
	assert.Equal(t, "90919-01191", *stored.ReplacedPartSKU)
	assert.Equal(t, models.FailureTypePremature, stored.FailureType)
	require.NotNil(t, stored.SourceBatchID)
	assert.Equal(t, "BATCH-TEST-"+suffix, *stored.SourceBatchID)

	// Appending to an unknown center reports no match, not an error
	appended, err = repo.AppendBooking(ctx, "SC-DOES-NOT-EXIST", booking)
	require.NoError(t, err)
	assert.False(t, appended)
}
