package batch_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sequoia/internal/repositories/batch"
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

func newTestBatch(suffix, vendorID string) *models.BatchAllocation {
	b := &models.BatchAllocation{
		BatchAllocationID: "BATCH-TEST-" + suffix,
		CompanyName:       "Test Motors",
		VendorDetails: map[string]any{
			"vendor_id": vendorID,
			"name":      "Test Vendor",
		},
		BatchInfo: map[string]any{
			"shipment": "SHP-" + suffix,
		},
		PartsManifest: []models.BatchPart{
			{PartSKU: "SKU-A-" + suffix, PartName: "Oil Filter", Quantity: 100},
			{PartSKU: "SKU-B-" + suffix, PartName: "Air Filter", Quantity: 50},
		},
	}
	if vendorID != "" {
		b.VendorID = &vendorID
	}
	return b
}

func TestBatchRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	vendorID := "V-TEST-" + suffix
	b := newTestBatch(suffix, vendorID)

	created, err := repo.Create(ctx, b)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := repo.GetByBatchID(ctx, b.BatchAllocationID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, b.BatchAllocationID, fetched.BatchAllocationID)
	assert.Equal(t, "Test Motors", fetched.CompanyName)
	require.NotNil(t, fetched.VendorID)
	assert.Equal(t, vendorID, *fetched.VendorID)
	assert.Equal(t, vendorID, fetched.VendorDetails["vendor_id"])
	assert.Equal(t, "SHP-"+suffix, fetched.BatchInfo["shipment"])

	require.Len(t, fetched.PartsManifest, 2)
	assert.Equal(t, "SKU-A-"+suffix, fetched.PartsManifest[0].PartSKU)
	assert.Equal(t, 100, fetched.PartsManifest[0].Quantity)
	assert.Equal(t, 0, fetched.PartsManifest[0].FailuresLogged)
	assert.Equal(t, "SKU-B-"+suffix, fetched.PartsManifest[1].PartSKU)
	assert.Equal(t, 50, fetched.PartsManifest[1].Quantity)
}

func TestBatchRepository_GetMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())

	_, err := repo.GetByBatchID(context.Background(), "BATCH-DOES-NOT-EXIST")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Batch not found", err.Error())
}

func TestBatchRepository_DuplicateBatchID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	b := newTestBatch(suffix, "")

	_, err := repo.Create(ctx, b)
	require.NoError(t, err)

	dupe := newTestBatch(suffix, "")
	_, err = repo.Create(ctx, dupe)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateKey(err))
	assert.Equal(t, "Batch ID already exists", err.Error())
}

func TestBatchRepository_DuplicateSKUInManifest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	b := newTestBatch(suffix, "")
	b.PartsManifest = append(b.PartsManifest, models.BatchPart{
		PartSKU:  b.PartsManifest[0].PartSKU,
		PartName: "Duplicate Entry",
		Quantity: 5,
	})

	_, err := repo.Create(ctx, b)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateKey(err))

	// The whole batch must be rejected, not just the repeated row
	_, err = repo.GetByBatchID(ctx, b.BatchAllocationID)
	assert.True(t, errors.IsNotFound(err))
}

func TestBatchRepository_ListByVendor(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())
	ctx := context.Background()

	vendorID := "V-TEST-" + uuid.New().String()[:8]

	first := newTestBatch(uuid.New().String()[:8], vendorID)
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	second := newTestBatch(uuid.New().String()[:8], vendorID)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	// Unlinked batches never roll up to any vendor
	unlinked := newTestBatch(uuid.New().String()[:8], "")
	_, err = repo.Create(ctx, unlinked)
	require.NoError(t, err)

	batches, err := repo.ListByVendor(ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, first.BatchAllocationID, batches[0].BatchAllocationID)
	assert.Equal(t, second.BatchAllocationID, batches[1].BatchAllocationID)
	assert.Len(t, batches[0].PartsManifest, 2)
	assert.Len(t, batches[1].PartsManifest, 2)

	empty, err := repo.ListByVendor(ctx, "V-DOES-NOT-EXIST")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBatchRepository_IncrementFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	b := newTestBatch(suffix, "")
	sku := b.PartsManifest[0].PartSKU

	_, err := repo.Create(ctx, b)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = repo.IncrementFailure(ctx, b.BatchAllocationID, sku)
		require.NoError(t, err)
	}

	fetched, err := repo.GetByBatchID(ctx, b.BatchAllocationID)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.PartsManifest[0].FailuresLogged)
	assert.Equal(t, 0, fetched.PartsManifest[1].FailuresLogged)

	// Unknown batch
	err = repo.IncrementFailure(ctx, "BATCH-DOES-NOT-EXIST", sku)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Batch not found", err.Error())

	// Known batch, SKU not in its manifest
	err = repo.IncrementFailure(ctx, b.BatchAllocationID, "SKU-NOT-IN-MANIFEST")
	require.Error(t, err)
	assert.True(t, errors.IsPartNotInManifest(err))
	assert.Equal(t, "Part SKU not found in this batch", err.Error())

	// The failed report must not have moved any counter
	fetched, err = repo.GetByBatchID(ctx, b.BatchAllocationID)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.PartsManifest[0].FailuresLogged)
}

func TestBatchRepository_ConcurrentIncrements(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := batch.NewRepository(db, getTestLogger())
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	b := newTestBatch(suffix, "")
	sku := b.PartsManifest[0].PartSKU

	_, err := repo.Create(ctx, b)
	require.NoError(t, err)

	const reports = 10
	errs := make(chan error, reports)
	var wg sync.WaitGroup
	for i := 0; i < reports; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementFailure(ctx, b.BatchAllocationID, sku)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	fetched, err := repo.GetByBatchID(ctx, b.BatchAllocationID)
	require.NoError(t, err)
	assert.Equal(t, reports, fetched.PartsManifest[0].FailuresLogged,
		fmt.Sprintf("expected exactly %d failures after %d concurrent reports", reports, reports))
}
