package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
)

type CorpusHandler struct {
	BaseHandler
	corpusService services.CorpusService
}

func NewCorpusHandler(corpusService services.CorpusService, logger utils.Logger) *CorpusHandler {
	return &CorpusHandler{
		BaseHandler:   NewBaseHandler(logger),
		corpusService: corpusService,
	}
}

// ListCorpus lists knowledge-base text entries
// @Summary List corpus items
// @Tags admin
// @Produce json
// @Param type query string false "Corpus type filter"
// @Param is_active query bool false "Active filter"
// @Param q query string false "Title search"
// @Success 200 {object} services.CorpusListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/corpus [get]
func (h *CorpusHandler) ListCorpus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.CorpusFilters{
		Query:    c.Query("q"),
		IsActive: queryBoolPtr(c, "is_active"),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	}
	if t := c.Query("type"); t != "" {
		ct := models.CorpusType(t)
		filters.Type = &ct
	}

	resp, err := h.corpusService.List(c.Request.Context(), user, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCorpus returns one corpus item
// @Summary Get corpus item
// @Tags admin
// @Produce json
// @Param id path string true "Corpus ID"
// @Success 200 {object} models.Corpus
// @Failure 404 {object} ErrorResponse
// @Router /admin/corpus/{id} [get]
func (h *CorpusHandler) GetCorpus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	item, err := h.corpusService.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// CreateCorpus creates a corpus item
// @Summary Create corpus item
// @Tags admin
// @Accept json
// @Produce json
// @Param item body services.CorpusCreateRequest true "Corpus data"
// @Success 201 {object} models.Corpus
// @Failure 400 {object} ErrorResponse
// @Router /admin/corpus [post]
func (h *CorpusHandler) CreateCorpus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CorpusCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	item, err := h.corpusService.Create(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateCorpus applies a partial corpus update
// @Summary Update corpus item
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Corpus ID"
// @Param item body services.CorpusUpdateRequest true "Fields to update"
// @Success 200 {object} models.Corpus
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/corpus/{id} [put]
func (h *CorpusHandler) UpdateCorpus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CorpusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	item, err := h.corpusService.Update(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteCorpus removes a corpus item
// @Summary Delete corpus item
// @Tags admin
// @Produce json
// @Param id path string true "Corpus ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/corpus/{id} [delete]
func (h *CorpusHandler) DeleteCorpus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.corpusService.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Corpus item deleted"})
}
