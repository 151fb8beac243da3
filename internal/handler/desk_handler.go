package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/internal/service"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/response"
)

type deskService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.DeskLoginResponse, error)
	Logout(ctx context.Context, deskID string) error
	Status(ctx context.Context, deskID string) (*service.DeskStatus, error)
}

// DeskHandler opens and closes registration desks.
type DeskHandler struct {
	service deskService
}

// NewDeskHandler creates a new handler.
func NewDeskHandler(svc deskService) *DeskHandler {
	return &DeskHandler{service: svc}
}

// Login godoc
// @Summary Open a desk
// @Description Log in an admin and open a desk session bound to the returned token
// @Tags Desks
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /desks [post]
func (h *DeskHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Current godoc
// @Summary Desk status
// @Description Show the desk admin and the operation currently in flight
// @Tags Desks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /desks/current [get]
func (h *DeskHandler) Current(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	status, err := h.service.Status(c.Request.Context(), deskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// Logout godoc
// @Summary Close the desk
// @Description Close the desk once its pending operation has finished
// @Tags Desks
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /desks/current [delete]
func (h *DeskHandler) Logout(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), deskID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
