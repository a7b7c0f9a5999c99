// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/models"
)

// PostgresStore implements Store against the catalog tables.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

func (s *PostgresStore) ResolveDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	var dept models.Department
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug
		FROM departments
		WHERE lower(name) = lower($1)`, name).Scan(&dept.ID, &dept.Name, &dept.Slug)
	if err == sql.ErrNoRows {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve department: %w", err)
	}
	return &dept, nil
}

// FindCourses constrains to the department and AND-combines a case-insensitive
// substring predicate on the description for each non-empty filter text.
func (s *PostgresStore) FindCourses(ctx context.Context, departmentID string, filters Filters) ([]models.Course, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, title, COALESCE(description, ''), department_id, COALESCE(url, ''), COALESCE(image_url, '')
		FROM courses
		WHERE department_id = $1`)

	args := []interface{}{departmentID}
	for _, text := range []string{filters.InterestText, filters.LevelText, filters.TimeText} {
		if text == "" {
			continue
		}
		args = append(args, "%"+text+"%")
		query.WriteString(fmt.Sprintf(" AND description ILIKE $%d", len(args)))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.DepartmentID, &c.URL, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	s.logger.Debug("courses fetched", map[string]interface{}{
		"departmentId": departmentID,
		"count":        len(courses),
	})
	return courses, nil
}

// FindActiveCampaigns returns campaigns whose target course belongs to the
// department and whose expiry date has not yet passed.
func (s *PostgresStore) FindActiveCampaigns(ctx context.Context, departmentID string, now time.Time) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ca.id, ca.title, COALESCE(ca.description, ''), ca.discount_rate, ca.expiry_date, ca.course_id, co.title
		FROM campaigns ca
		JOIN courses co ON co.id = ca.course_id
		WHERE co.department_id = $1
		  AND ca.expiry_date >= $2`, departmentID, now)
	if err != nil {
		return nil, fmt.Errorf("find campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.DiscountRate, &c.ExpiryDate, &c.CourseID, &c.CourseTitle); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}

	return campaigns, nil
}
