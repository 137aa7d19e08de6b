package servicecenter

import (
	"database/sql"
	"time"

	"github.com/Ramsey-B/sequoia/pkg/database"
	"github.com/Ramsey-B/sequoia/pkg/models"
)

const (
	centersTable = "service_centers"
)

// CenterRow represents the database row for a service center
type CenterRow struct {
	ID              sql.NullString                   `db:"id"`
	CenterID        sql.NullString                   `db:"center_id"`
	Name            sql.NullString                   `db:"name"`
	Location        sql.NullString                   `db:"location"`
	Phone           sql.NullString                   `db:"phone"`
	Capacity        sql.NullInt64                    `db:"capacity"`
	Specializations database.JSONB[[]string]         `db:"specializations"`
	Bookings        database.JSONB[[]models.Booking] `db:"bookings"`
	IsActive        sql.NullBool                     `db:"is_active"`
	CreatedAt       sql.NullTime                     `db:"created_at"`
	UpdatedAt       sql.NullTime                     `db:"updated_at"`
}

var centerStruct = database.NewStruct(new(CenterRow))

// FromCenter converts a domain model to a database row
func FromCenter(c *models.ServiceCenter) *CenterRow {
	specializations := c.Specializations
	if specializations == nil {
		specializations = []string{}
	}
	bookings := c.Bookings
	if bookings == nil {
		bookings = []models.Booking{}
	}

	return &CenterRow{
		ID:              sql.NullString{String: c.ID, Valid: c.ID != ""},
		CenterID:        sql.NullString{String: c.CenterID, Valid: c.CenterID != ""},
		Name:            sql.NullString{String: c.Name, Valid: c.Name != ""},
		Location:        sql.NullString{String: c.Location, Valid: c.Location != ""},
		Phone:           sql.NullString{String: c.Phone, Valid: c.Phone != ""},
		Capacity:        sql.NullInt64{Int64: int64(c.Capacity), Valid: true},
		Specializations: database.NewJSONB(specializations),
		Bookings:        database.NewJSONB(bookings),
		IsActive:        sql.NullBool{Bool: c.IsActive, Valid: true},
		CreatedAt:       sql.NullTime{Time: c.CreatedAt, Valid: !c.CreatedAt.IsZero()},
		UpdatedAt:       sql.NullTime{Time: c.UpdatedAt, Valid: !c.UpdatedAt.IsZero()},
	}
}

// ToCenter converts a database row to a domain model
func ToCenter(row *CenterRow) *models.ServiceCenter {
	return &models.ServiceCenter{
		ID:              row.ID.String,
		CenterID:        row.CenterID.String,
		Name:            row.Name.String,
		Location:        row.Location.String,
		Phone:           row.Phone.String,
		Capacity:        int(row.Capacity.Int64),
		Specializations: row.Specializations.GetValue(),
		Bookings:        row.Bookings.GetValue(),
		IsActive:        row.IsActive.Bool,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}

// ToCenters converts a slice of database rows to domain models
func ToCenters(rows []CenterRow) []models.ServiceCenter {
	centers := make([]models.ServiceCenter, len(rows))
	for i, row := range rows {
		centers[i] = *ToCenter(&row)
	}
	return centers
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
