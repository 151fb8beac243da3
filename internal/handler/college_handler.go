package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/regdesk-api/internal/dto"
	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/response"
)

type collegeService interface {
	ListColleges(ctx context.Context, deskID, query string) ([]models.College, error)
	AddCollege(ctx context.Context, deskID string, req models.CreateCollegeRequest) (models.College, error)
}

// CollegeHandler exposes the college picker.
type CollegeHandler struct {
	service collegeService
}

// NewCollegeHandler creates a new handler.
func NewCollegeHandler(svc collegeService) *CollegeHandler {
	return &CollegeHandler{service: svc}
}

// List godoc
// @Summary List colleges
// @Description List colleges ordered by id, filtered by prefix or fuzzy match on name
// @Tags Colleges
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /colleges [get]
func (h *CollegeHandler) List(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	colleges, err := h.service.ListColleges(c.Request.Context(), deskID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if colleges == nil {
		colleges = []models.College{}
	}
	response.OK(c, dto.CollegeListResponse{Query: query, Colleges: colleges}, map[string]interface{}{"total": len(colleges)})
}

// Create godoc
// @Summary Add a college
// @Tags Colleges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCollegeRequest true "College payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /colleges [post]
func (h *CollegeHandler) Create(c *gin.Context) {
	deskID, ok := deskFromContext(c)
	if !ok {
		return
	}
	var req models.CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid college payload"))
		return
	}
	college, err := h.service.AddCollege(c.Request.Context(), deskID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, college)
}
