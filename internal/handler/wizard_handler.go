package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/internal/service"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// WizardHandler wires the booking wizard to HTTP routes.
type WizardHandler struct {
	wizard *service.WizardService
}

// NewWizardHandler constructs a new WizardHandler.
func NewWizardHandler(wizard *service.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

type selectTeacherRequest struct {
	TeacherID string `json:"teacherId" binding:"required"`
}

type selectDateTimeRequest struct {
	Start time.Time `json:"start" binding:"required"`
}

type selectSessionTypeRequest struct {
	SessionType models.SessionType         `json:"sessionType" binding:"required"`
	Recurrence  *service.RecurrenceRequest `json:"recurrence"`
}

type wizardBackRequest struct {
	Step service.WizardStep `json:"step" binding:"required"`
}

type wizardConfirmRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// Start godoc
// @Summary Start a booking wizard session
// @Tags Wizard
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /wizard [post]
func (h *WizardHandler) Start(c *gin.Context) {
	session, err := h.wizard.Start(c.Request.Context(), actorFromRequest(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get godoc
// @Summary Get wizard state
// @Tags Wizard
// @Produce json
// @Param id path string true "Wizard ID"
// @Success 200 {object} response.Envelope
// @Router /wizard/{id} [get]
func (h *WizardHandler) Get(c *gin.Context) {
	session, err := h.wizard.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// SelectTeacher godoc
// @Summary Commit the teacher choice
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Wizard ID"
// @Success 200 {object} response.Envelope
// @Router /wizard/{id}/teacher [post]
func (h *WizardHandler) SelectTeacher(c *gin.Context) {
	var req selectTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher selection"))
		return
	}
	session, err := h.wizard.SelectTeacher(c.Request.Context(), c.Param("id"), req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// SelectDateTime godoc
// @Summary Commit the slot choice
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Wizard ID"
// @Success 200 {object} response.Envelope
// @Router /wizard/{id}/datetime [post]
func (h *WizardHandler) SelectDateTime(c *gin.Context) {
	var req selectDateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot selection"))
		return
	}
	session, err := h.wizard.SelectDateTime(c.Request.Context(), c.Param("id"), req.Start)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// SelectSessionType godoc
// @Summary Commit the session type and recurrence
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Wizard ID"
// @Success 200 {object} response.Envelope
// @Router /wizard/{id}/session-type [post]
func (h *WizardHandler) SelectSessionType(c *gin.Context) {
	var req selectSessionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session type selection"))
		return
	}
	session, err := h.wizard.SelectSessionType(c.Request.Context(), c.Param("id"), req.SessionType, req.Recurrence)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Back godoc
// @Summary Navigate back to an earlier step
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Wizard ID"
// @Success 200 {object} response.Envelope
// @Router /wizard/{id}/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	var req wizardBackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid step"))
		return
	}
	session, err := h.wizard.Back(c.Request.Context(), c.Param("id"), req.Step)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Confirm godoc
// @Summary Confirm the wizard and create the booking
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Wizard ID"
// @Success 200 {object} response.Envelope
// @Router /wizard/{id}/confirm [post]
func (h *WizardHandler) Confirm(c *gin.Context) {
	var req wizardConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirmation payload"))
		return
	}
	session, err := h.wizard.Confirm(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
