// internal/matcher/matcher.go
package matcher

import (
	"context"
	"errors"
	"time"

	"acadezone-chatbot/internal/catalog"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/common/metrics"
	"acadezone-chatbot/internal/models"
)

// Wildcard answers that match the whole catalog instead of filtering it.
const (
	WildcardAll      = "Hepsi"
	WildcardFlexible = "Esnek"
)

// Query carries the collected qualification answers for one recommendation run.
type Query struct {
	Department string
	Interest   string
	Level      string
	Time       string
}

// Matcher resolves a department and returns the courses and active campaigns
// that satisfy the qualification answers.
type Matcher struct {
	store  catalog.Store
	logger logger.Logger
	now    func() time.Time
}

func New(store catalog.Store, log logger.Logger) *Matcher {
	return &Matcher{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "matcher"}),
		now:    time.Now,
	}
}

// Match runs the recommendation query. An unknown department yields an empty
// result, not an error: the conversation treats it the same as zero matches.
func (m *Matcher) Match(ctx context.Context, query Query) (*models.MatchResult, error) {
	start := m.now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	dept, err := m.store.ResolveDepartmentByName(ctx, query.Department)
	if err != nil {
		if errors.Is(err, catalog.ErrDepartmentNotFound) {
			m.logger.Info("department not in catalog", map[string]interface{}{
				"department": query.Department,
			})
			metrics.RecommendationEmpty.Inc()
			return &models.MatchResult{Courses: []models.Course{}, Campaigns: []models.Campaign{}}, nil
		}
		return nil, err
	}

	filters := buildFilters(query)
	courses, err := m.store.FindCourses(ctx, dept.ID, filters)
	if err != nil {
		return nil, err
	}

	campaigns, err := m.store.FindActiveCampaigns(ctx, dept.ID, m.now())
	if err != nil {
		return nil, err
	}

	if len(courses) == 0 {
		metrics.RecommendationEmpty.Inc()
	}

	m.logger.Info("recommendation matched", map[string]interface{}{
		"department": dept.Name,
		"courses":    len(courses),
		"campaigns":  len(campaigns),
	})
	return &models.MatchResult{Courses: courses, Campaigns: campaigns}, nil
}

// buildFilters maps answers to description predicates. Wildcards impose no
// filter at all.
func buildFilters(query Query) catalog.Filters {
	var f catalog.Filters
	if query.Interest != "" && query.Interest != WildcardAll {
		f.InterestText = query.Interest
	}
	if query.Level != "" && query.Level != WildcardAll {
		f.LevelText = query.Level
	}
	if query.Time != "" && query.Time != WildcardFlexible {
		f.TimeText = query.Time
	}
	return f
}
