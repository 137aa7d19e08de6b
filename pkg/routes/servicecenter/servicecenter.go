package servicecenter

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/sequoia/internal/repositories/servicecenter"
	"github.com/Ramsey-B/sequoia/pkg/errors"
	"github.com/Ramsey-B/sequoia/pkg/events"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/Ramsey-B/sequoia/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Register registers the service center directory routes
func Register(g *echo.Group) {
	g.POST("/register-center", Create)
	g.GET("/get-all-centers", List)
	g.GET("/get-center-details/:center_id", Get)
	g.GET("/get-center-by-name/:name", GetByName)
	g.POST("/book-slot/:center_id", BookSlot)
}

// applyBookingDefaults fills the status and failure type a caller left off
func applyBookingDefaults(b *models.Booking) {
	if b.Status == "" {
		b.Status = models.BookingStatusScheduled
	}
	if b.FailureType == "" {
		b.FailureType = models.FailureTypeNormalWear
	}
}

// Create handles POST /register-center
func Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ServiceCenterHandler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.RegisterCenterRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[servicecenter.ServiceCenterRepository](ctx)
	if err != nil {
		return err
	}

	center := &models.ServiceCenter{
		CenterID:        req.CenterID,
		Name:            req.Name,
		Location:        req.Location,
		Phone:           req.Phone,
		Capacity:        req.Capacity,
		Specializations: req.Specializations,
		Bookings:        req.Bookings,
		IsActive:        true,
	}
	if req.IsActive != nil {
		center.IsActive = *req.IsActive
	}
	for i := range center.Bookings {
		applyBookingDefaults(&center.Bookings[i])
	}

	created, err := repo.Create(ctx, center)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err == nil && emitter != nil {
		_ = emitter.EmitCenterRegistered(ctx, created)
	}

	return c.JSON(http.StatusOK, models.CreatedResponse{
		Message: "Registered Successfully",
		ID:      created.ID,
	})
}

// List handles GET /get-all-centers
func List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ServiceCenterHandler.List")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[servicecenter.ServiceCenterRepository](ctx)
	if err != nil {
		return err
	}

	centers, err := repo.List(ctx)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, centers)
}

// Get handles GET /get-center-details/:center_id
func Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ServiceCenterHandler.Get")
	defer span.End()

	centerID := c.Param("center_id")

	ctx, repo, err := ectoinject.GetContext[servicecenter.ServiceCenterRepository](ctx)
	if err != nil {
		return err
	}

	center, err := repo.GetByCenterID(ctx, centerID)
	if err != nil {
		return errors.ToHTTPError(err)
	}
	if center == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "Center Not Found")
	}

	return c.JSON(http.StatusOK, center)
}

// GetByName handles GET /get-center-by-name/:name with a case-insensitive
// exact name match
func GetByName(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ServiceCenterHandler.GetByName")
	defer span.End()

	name := c.Param("name")

	ctx, repo, err := ectoinject.GetContext[servicecenter.ServiceCenterRepository](ctx)
	if err != nil {
		return err
	}

	center, err := repo.GetByName(ctx, name)
	if err != nil {
		return errors.ToHTTPError(err)
	}
	if center == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "Service Center with this name not found")
	}

	return c.JSON(http.StatusOK, center)
}

// BookSlot handles POST /book-slot/:center_id. The booking may carry RCA
// linkage back to a batch and SKU; it is stored exactly as submitted and
// never reports the failure itself.
func BookSlot(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ServiceCenterHandler.BookSlot")
	defer span.End()

	centerID := c.Param("center_id")

	booking, err := utils.BindRequest[models.Booking](c)
	if err != nil {
		return err
	}
	applyBookingDefaults(&booking)

	ctx, repo, err := ectoinject.GetContext[servicecenter.ServiceCenterRepository](ctx)
	if err != nil {
		return err
	}

	center, err := repo.GetByCenterID(ctx, centerID)
	if err != nil {
		return errors.ToHTTPError(err)
	}
	if center == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "Service Center Not Found")
	}

	if len(center.Bookings) >= center.Capacity {
		return httperror.NewHTTPError(http.StatusBadRequest, "Center is Full for Today")
	}

	appended, err := repo.AppendBooking(ctx, centerID, booking)
	if err != nil {
		return errors.ToHTTPError(err)
	}
	if !appended {
		return httperror.NewHTTPError(http.StatusNotFound, "Service Center Not Found")
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err == nil && emitter != nil {
		_ = emitter.EmitSlotBooked(ctx, centerID, booking)
	}

	return c.JSON(http.StatusOK, models.BookedResponse{
		Message:   "Slot Booked Successfully",
		BookingID: booking.BookingID,
	})
}
