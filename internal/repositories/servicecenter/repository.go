package servicecenter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sequoia/pkg/database"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/google/uuid"
)

// ServiceCenterRepository defines the interface for the center directory
type ServiceCenterRepository interface {
	Create(ctx context.Context, center *models.ServiceCenter) (*models.ServiceCenter, error)
	GetByCenterID(ctx context.Context, centerID string) (*models.ServiceCenter, error)
	GetByName(ctx context.Context, name string) (*models.ServiceCenter, error)
	List(ctx context.Context) ([]models.ServiceCenter, error)
	AppendBooking(ctx context.Context, centerID string, booking models.Booking) (bool, error)
}

// Repository implements ServiceCenterRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new service center repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create registers a service center. Uniqueness of center_id is decided in
// storage so concurrent registrations cannot both win.
func (r *Repository) Create(ctx context.Context, center *models.ServiceCenter) (*models.ServiceCenter, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceCenterRepository.Create")
	defer span.End()

	now := Now()
	center.ID = uuid.New().String()
	center.CreatedAt = now
	center.UpdatedAt = now

	ib := centerStruct.InsertInto(centersTable, FromCenter(center))
	ib.OnConflictDoNothing()

	query, args := ib.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to register service center")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to register service center")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, errors.NewDuplicateKeyError("Center ID already exists").
			WithResource("service_center").
			WithKey(center.CenterID)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        center.ID,
		"center_id": center.CenterID,
	}).Info("registered service center")

	return center, nil
}

// GetByCenterID gets a center by its external center id
func (r *Repository) GetByCenterID(ctx context.Context, centerID string) (*models.ServiceCenter, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceCenterRepository.GetByCenterID")
	defer span.End()

	sb := centerStruct.SelectFrom(centersTable)
	sb.Where(sb.Equal("center_id", centerID))

	query, args := sb.Build()

	var row CenterRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get service center")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service center")
	}

	return ToCenter(&row), nil
}

// GetByName gets a center by exact name, ignoring case
func (r *Repository) GetByName(ctx context.Context, name string) (*models.ServiceCenter, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceCenterRepository.GetByName")
	defer span.End()

	sb := centerStruct.SelectFrom(centersTable)
	sb.Where(fmt.Sprintf("LOWER(name) = LOWER(%s)", sb.Var(name)))

	query, args := sb.Build()

	var row CenterRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get service center by name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service center")
	}

	return ToCenter(&row), nil
}

// List returns every center in the directory with its bookings
func (r *Repository) List(ctx context.Context) ([]models.ServiceCenter, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceCenterRepository.List")
	defer span.End()

	sb := centerStruct.SelectFrom(centersTable)
	sb.OrderBy("created_at")

	query, args := sb.Build()

	var rows []CenterRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list service centers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list service centers")
	}

	return ToCenters(rows), nil
}

// AppendBooking pushes one booking onto the center's bookings array in
// place. Returns false when no row matched the center id. Capacity is the
// caller's check; the directory applies whatever it is told to store.
func (r *Repository) AppendBooking(ctx context.Context, centerID string, booking models.Booking) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceCenterRepository.AppendBooking")
	defer span.End()

	payload, err := json.Marshal([]models.Booking{booking})
	if err != nil {
		return false, fmt.Errorf("failed to encode booking: %w", err)
	}

	// Using raw SQL since sqlbuilder has no jsonb concat support
	query := `
		UPDATE service_centers
		SET bookings = bookings || $1::jsonb, updated_at = NOW()
		WHERE center_id = $2`

	result, err := r.db.ExecContext(ctx, query, string(payload), centerID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to append booking")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to book slot")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return false, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"center_id":  centerID,
		"booking_id": booking.BookingID,
	}).Info("booked slot")

	return true, nil
}
