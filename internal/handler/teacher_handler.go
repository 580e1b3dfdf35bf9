package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// TeacherHandler wires teacher search and availability to HTTP routes.
type TeacherHandler struct {
	search       *service.SearchService
	availability *service.AvailabilityService
	maxRange     time.Duration
}

// NewTeacherHandler constructs a new TeacherHandler. maxRange caps the slot
// query window; zero disables the cap.
func NewTeacherHandler(search *service.SearchService, availability *service.AvailabilityService, maxRange time.Duration) *TeacherHandler {
	return &TeacherHandler{search: search, availability: availability, maxRange: maxRange}
}

// List godoc
// @Summary Search teachers
// @Tags Teachers
// @Produce json
// @Param subject query string false "Specialization substring"
// @Param experience query string false "Experience range (1-2, 3-5, 5+)"
// @Param rating query string false "Minimum rating (4+, 4.5+, 4.8+)"
// @Param priceMin query string false "Minimum hourly rate"
// @Param priceMax query string false "Maximum hourly rate"
// @Param search query string false "Free-text search"
// @Param sort query string false "Sort key (rating-desc, price-asc, price-desc)"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	filter := models.SearchFilter{
		Subject:    strings.TrimSpace(c.Query("subject")),
		Experience: strings.TrimSpace(c.Query("experience")),
		MinRating:  strings.TrimSpace(c.Query("rating")),
		PriceMin:   strings.TrimSpace(c.Query("priceMin")),
		PriceMax:   strings.TrimSpace(c.Query("priceMax")),
		Search:     strings.TrimSpace(c.Query("search")),
		SortBy:     c.Query("sort"),
	}
	filter.NativeSpeaker = boolQuery(c, "nativeSpeaker")
	filter.Certified = boolQuery(c, "certified")
	filter.GroupSessions = boolQuery(c, "groupSessions")
	filter.TrialSession = boolQuery(c, "trialSession")
	filter.WeekendAvailable = boolQuery(c, "weekendAvailable")

	teachers, err := h.search.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, models.NewPagination(1, len(teachers), len(teachers)))
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.search.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Slots godoc
// @Summary List a teacher's bookable slots
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD), defaults to from"
// @Param duration query int false "Session duration in minutes"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/slots [get]
func (h *TeacherHandler) Slots(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD"))
		return
	}
	to := from
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD"))
			return
		}
	}
	if h.maxRange > 0 && to.Sub(from) > h.maxRange {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date range exceeds the maximum search window"))
		return
	}
	duration := 60
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration must be a positive integer"))
			return
		}
	}

	slots, err := h.availability.SlotsForRange(c.Request.Context(), c.Param("id"), from, to, duration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

func boolQuery(c *gin.Context, key string) bool {
	return strings.EqualFold(c.Query(key), "true")
}
