package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/regdesk-api/internal/dto"
	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/response"
)

type participantService interface {
	LookupParticipant(ctx context.Context, deskID, code string) (models.Participant, error)
	RegisterParticipant(ctx context.Context, deskID string, req models.CreateParticipantRequest) (models.Participant, error)
	UpdateParticipant(ctx context.Context, deskID, code string, req models.UpdateParticipantRequest) (models.Participant, error)
	VerifyParticipant(ctx context.Context, deskID, code string) (models.Participant, error)
	AssignHospitality(ctx context.Context, deskID, code string, req models.HospitalityRequest) (models.Participant, error)
}

// ParticipantHandler exposes participant registration endpoints.
type ParticipantHandler struct {
	service participantService
}

// NewParticipantHandler creates a new handler.
func NewParticipantHandler(svc participantService) *ParticipantHandler {
	return &ParticipantHandler{service: svc}
}

// Get godoc
// @Summary Look up a participant
// @Description Find a participant by printed code (R19001001) or numeric id
// @Tags Participants
// @Produce json
// @Security BearerAuth
// @Param code path string true "Participant code or id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /participants/{code} [get]
func (h *ParticipantHandler) Get(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	p, err := h.service.LookupParticipant(c.Request.Context(), deskID, c.Param("code"))
	h.respond(c, http.StatusOK, p, err)
}

// Create godoc
// @Summary Register a participant
// @Description Create a participant, optionally verified at the desk straight away
// @Tags Participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateParticipantRequest true "Participant payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /participants [post]
func (h *ParticipantHandler) Create(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	var req models.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid participant payload"))
		return
	}
	p, err := h.service.RegisterParticipant(c.Request.Context(), deskID, req)
	h.respond(c, http.StatusCreated, p, err)
}

// Update godoc
// @Summary Update a participant
// @Description Replace participant details and college, keeping registration and hospitality
// @Tags Participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Participant code or id"
// @Param payload body models.UpdateParticipantRequest true "Participant payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /participants/{code} [put]
func (h *ParticipantHandler) Update(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid participant payload"))
		return
	}
	p, err := h.service.UpdateParticipant(c.Request.Context(), deskID, c.Param("code"), req)
	h.respond(c, http.StatusOK, p, err)
}

// Verify godoc
// @Summary Verify a registration
// @Description Mark the participant verified by the desk admin. Verification happens once.
// @Tags Participants
// @Produce json
// @Security BearerAuth
// @Param code path string true "Participant code or id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /participants/{code}/verify [post]
func (h *ParticipantHandler) Verify(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	p, err := h.service.VerifyParticipant(c.Request.Context(), deskID, c.Param("code"))
	h.respond(c, http.StatusOK, p, err)
}

// Hospitality godoc
// @Summary Assign hospitality
// @Description Set or replace the hostel room of a participant
// @Tags Participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Participant code or id"
// @Param payload body models.HospitalityRequest true "Hospitality payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /participants/{code}/hospitality [put]
func (h *ParticipantHandler) Hospitality(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	var req models.HospitalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hospitality payload"))
		return
	}
	p, err := h.service.AssignHospitality(c.Request.Context(), deskID, c.Param("code"), req)
	h.respond(c, http.StatusOK, p, err)
}

func (h *ParticipantHandler) respond(c *gin.Context, status int, p models.Participant, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, dto.NewParticipantResponse(p))
}
