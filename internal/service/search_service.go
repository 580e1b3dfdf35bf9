package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
)

// SearchService filters and orders the teacher roster. All predicates AND
// together; absent or "all"-valued predicates match every teacher.
type SearchService struct {
	catalog teacherCatalog
	logger  *zap.Logger
}

// NewSearchService constructs a SearchService.
func NewSearchService(catalog teacherCatalog, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{catalog: catalog, logger: logger}
}

// Get returns one teacher profile by id.
func (s *SearchService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	return s.catalog.GetTeacher(ctx, id)
}

// Search returns teachers matching the filter in the requested order. A
// filter that excludes everyone returns an empty list, not an error.
func (s *SearchService) Search(ctx context.Context, filter models.SearchFilter) ([]models.Teacher, error) {
	teachers, err := s.catalog.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	matched := make([]models.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		ok, err := matches(teacher, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, teacher)
		}
	}

	sortTeachers(matched, filter.SortBy)
	return matched, nil
}

func matches(t models.Teacher, f models.SearchFilter) (bool, error) {
	if !matchSubject(t, f.Subject) {
		return false, nil
	}

	ok, err := matchExperience(t, f.Experience)
	if err != nil || !ok {
		return ok, err
	}

	ok, err = matchRating(t, f.MinRating)
	if err != nil || !ok {
		return ok, err
	}

	ok, err = matchPrice(t, f.PriceMin, f.PriceMax)
	if err != nil || !ok {
		return ok, err
	}

	if !matchSearchText(t, f.Search) {
		return false, nil
	}

	if f.NativeSpeaker && !t.NativeSpeaker {
		return false, nil
	}
	if f.Certified && !t.Certified {
		return false, nil
	}
	if f.GroupSessions && !t.OffersGroupSessions {
		return false, nil
	}
	if f.TrialSession && !t.OffersTrialSession {
		return false, nil
	}
	if f.WeekendAvailable && !t.WeekendAvailable {
		return false, nil
	}

	return true, nil
}

func matchSubject(t models.Teacher, subject string) bool {
	if subject == "" || subject == models.FilterAll {
		return true
	}
	needle := strings.ToLower(subject)
	for _, spec := range t.Specializations {
		if strings.Contains(strings.ToLower(spec), needle) {
			return true
		}
	}
	return false
}

// matchExperience understands the range vocabulary "1-2", "3-5" and "5+".
func matchExperience(t models.Teacher, experience string) (bool, error) {
	if experience == "" || experience == models.FilterAll {
		return true, nil
	}

	if strings.HasSuffix(experience, "+") {
		min, err := strconv.Atoi(strings.TrimSuffix(experience, "+"))
		if err != nil {
			return false, appErrors.Clone(appErrors.ErrValidation, "invalid experience filter")
		}
		return t.ExperienceYears >= min, nil
	}

	parts := strings.SplitN(experience, "-", 2)
	if len(parts) != 2 {
		return false, appErrors.Clone(appErrors.ErrValidation, "invalid experience filter")
	}
	min, errMin := strconv.Atoi(parts[0])
	max, errMax := strconv.Atoi(parts[1])
	if errMin != nil || errMax != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, "invalid experience filter")
	}
	return t.ExperienceYears >= min && t.ExperienceYears <= max, nil
}

// matchRating understands thresholds written as "4+", "4.5+", "4.8+".
func matchRating(t models.Teacher, rating string) (bool, error) {
	if rating == "" || rating == models.FilterAll {
		return true, nil
	}
	threshold, err := strconv.ParseFloat(strings.TrimSuffix(rating, "+"), 64)
	if err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, "invalid rating filter")
	}
	return t.Rating >= threshold, nil
}

func matchPrice(t models.Teacher, priceMin, priceMax string) (bool, error) {
	if priceMin != "" {
		min, err := decimal.NewFromString(priceMin)
		if err != nil {
			return false, appErrors.Clone(appErrors.ErrValidation, "invalid minimum price")
		}
		if t.HourlyRate.LessThan(min) {
			return false, nil
		}
	}
	if priceMax != "" {
		max, err := decimal.NewFromString(priceMax)
		if err != nil {
			return false, appErrors.Clone(appErrors.ErrValidation, "invalid maximum price")
		}
		if t.HourlyRate.GreaterThan(max) {
			return false, nil
		}
	}
	return true, nil
}

func matchSearchText(t models.Teacher, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	for _, spec := range t.Specializations {
		if strings.Contains(strings.ToLower(spec), needle) {
			return true
		}
	}
	return false
}

// sortTeachers orders in place. Ties keep catalog order; an unknown or empty
// key leaves the list untouched.
func sortTeachers(teachers []models.Teacher, sortBy string) {
	switch sortBy {
	case models.SortRatingDesc:
		sort.SliceStable(teachers, func(i, j int) bool {
			return teachers[i].Rating > teachers[j].Rating
		})
	case models.SortPriceAsc:
		sort.SliceStable(teachers, func(i, j int) bool {
			return teachers[i].HourlyRate.LessThan(teachers[j].HourlyRate)
		})
	case models.SortPriceDesc:
		sort.SliceStable(teachers, func(i, j int) bool {
			return teachers[i].HourlyRate.GreaterThan(teachers[j].HourlyRate)
		})
	}
}
