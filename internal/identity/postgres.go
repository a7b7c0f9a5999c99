// internal/identity/postgres.go
package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/models"

	"github.com/google/uuid"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify builds a URL-safe identifier from a department name.
func slugify(name string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// PostgresRepository implements Repository against the lead tables.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "identity"}),
	}
}

func (r *PostgresRepository) UpsertUser(ctx context.Context, identity models.Identity, department string) (string, error) {
	user := models.User{
		ID:      uuid.New().String(),
		Name:    identity.Name,
		Surname: identity.Surname,
		Email:   identity.Email,
		Phone:   identity.Phone,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, surname, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, surname = EXCLUDED.surname, phone = EXCLUDED.phone
		RETURNING id`,
		user.ID, user.Name, user.Surname, user.Email, user.Phone,
	).Scan(&user.ID)
	if err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}
	userID := user.ID

	if department != "" {
		if _, err := r.resolveOrCreateDepartment(ctx, department); err != nil {
			// The user record is already durable; department linkage is
			// recovered on the next session update.
			r.logger.Warn("department resolve failed during user upsert", map[string]interface{}{
				"department": department,
				"error":      err.Error(),
			})
		}
	}

	r.logger.Info("user persisted", map[string]interface{}{
		"userId":     userID,
		"department": department,
	})
	return userID, nil
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, userID, department string, answers map[string]string) error {
	userSession := models.UserSession{
		ID:          uuid.New().String(),
		UserID:      userID,
		SessionData: answers,
	}
	if department != "" {
		id, err := r.resolveOrCreateDepartment(ctx, department)
		if err != nil {
			return fmt.Errorf("resolve department: %w", err)
		}
		userSession.DepartmentID = id
	}

	sessionData, err := json.Marshal(userSession.SessionData)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}

	departmentID := sql.NullString{String: userSession.DepartmentID, Valid: userSession.DepartmentID != ""}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_sessions (id, user_id, department_id, session_data, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET department_id = EXCLUDED.department_id,
		    session_data = EXCLUDED.session_data,
		    updated_at = NOW()`,
		userSession.ID, userSession.UserID, departmentID, sessionData,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateContactRequest(ctx context.Context, userID string, kind models.ContactRequestKind) (string, error) {
	requestID := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_requests (id, user_id, kind, status, created_at)
		VALUES ($1, $2, $3, 'new', NOW())`,
		requestID, userID, string(kind),
	)
	if err != nil {
		return "", fmt.Errorf("create contact request: %w", err)
	}

	r.logger.Info("contact request created", map[string]interface{}{
		"requestId": requestID,
		"userId":    userID,
		"kind":      string(kind),
	})
	return requestID, nil
}

// resolveOrCreateDepartment finds a department by name, creating the record
// with a slug when it does not exist yet. Free-text department input is
// allowed: the presented option list is a suggestion, not a closed set.
func (r *PostgresRepository) resolveOrCreateDepartment(ctx context.Context, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM departments WHERE lower(name) = lower($1)`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("find department: %w", err)
	}

	id = uuid.New().String()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, slug) VALUES ($1, $2, $3)`,
		id, name, slugify(name),
	)
	if err != nil {
		return "", fmt.Errorf("create department: %w", err)
	}
	return id, nil
}
