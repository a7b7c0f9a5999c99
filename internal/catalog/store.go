// internal/catalog/store.go
package catalog

import (
	"context"
	"errors"
	"time"

	"acadezone-chatbot/internal/models"
)

// ErrDepartmentNotFound is returned when a department name resolves to nothing.
var ErrDepartmentNotFound = errors.New("DEPARTMENT_NOT_FOUND")

// Filters holds the optional keyword predicates applied to course
// descriptions. Empty fields impose no filter; the matcher resolves the
// catalog-wide wildcards before building a Filters value.
type Filters struct {
	InterestText string
	LevelText    string
	TimeText     string
}

// Store is the read-only catalog lookup surface consumed by the matcher.
type Store interface {
	ResolveDepartmentByName(ctx context.Context, name string) (*models.Department, error)
	FindCourses(ctx context.Context, departmentID string, filters Filters) ([]models.Course, error)
	FindActiveCampaigns(ctx context.Context, departmentID string, now time.Time) ([]models.Campaign, error)
}
