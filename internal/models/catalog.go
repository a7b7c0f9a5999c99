// internal/models/catalog.go
package models

import "time"

// Department is a top-level catalog category a lead can be interested in.
type Department struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug,omitempty" db:"slug"`
}

// Course belongs to exactly one department. Its description is unstructured
// qualifying text; interest/level/time keywords are matched against it as
// substrings.
type Course struct {
	ID           string `json:"id" db:"id"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description" db:"description"`
	DepartmentID string `json:"departmentId" db:"department_id"`
	URL          string `json:"url,omitempty" db:"url"`
	ImageURL     string `json:"imageUrl,omitempty" db:"image_url"`
}

// Campaign targets exactly one course. DiscountRate is always within [1,100].
type Campaign struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	DiscountRate int       `json:"discountRate" db:"discount_rate"`
	ExpiryDate   time.Time `json:"expiryDate" db:"expiry_date"`
	CourseID     string    `json:"courseId" db:"course_id"`
	CourseTitle  string    `json:"courseName,omitempty" db:"course_title"`
}

// IsActive reports whether the campaign has not yet expired.
func (c *Campaign) IsActive(now time.Time) bool {
	return !c.ExpiryDate.Before(now)
}

// MatchResult is the output of the recommendation matcher. An empty course
// list is a valid, meaningful result, not an error.
type MatchResult struct {
	Courses   []Course   `json:"courses"`
	Campaigns []Campaign `json:"campaigns"`
}
