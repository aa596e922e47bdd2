package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
)

// maxImportSize bounds uploaded spreadsheets at 10 MiB.
const maxImportSize = 10 << 20

type DatabaseHandler struct {
	BaseHandler
	databaseService services.DatabaseService
}

func NewDatabaseHandler(databaseService services.DatabaseService, logger utils.Logger) *DatabaseHandler {
	return &DatabaseHandler{
		BaseHandler:     NewBaseHandler(logger),
		databaseService: databaseService,
	}
}

// ListEntries lists structured datasets
// @Summary List database entries
// @Tags admin
// @Produce json
// @Param category query string false "Category filter"
// @Param is_active query bool false "Active filter"
// @Success 200 {object} services.DatabaseEntryListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/databases [get]
func (h *DatabaseHandler) ListEntries(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.DatabaseEntryFilters{
		IsActive: queryBoolPtr(c, "is_active"),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	}
	if cat := c.Query("category"); cat != "" {
		dc := models.DatabaseCategory(cat)
		filters.Category = &dc
	}

	resp, err := h.databaseService.List(c.Request.Context(), user, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetEntry returns one dataset
// @Summary Get database entry
// @Tags admin
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} models.DatabaseEntry
// @Failure 404 {object} ErrorResponse
// @Router /admin/databases/{id} [get]
func (h *DatabaseHandler) GetEntry(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	entry, err := h.databaseService.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// CreateEntry creates a dataset
// @Summary Create database entry
// @Tags admin
// @Accept json
// @Produce json
// @Param entry body services.DatabaseEntryCreateRequest true "Entry data"
// @Success 201 {object} models.DatabaseEntry
// @Failure 400 {object} ErrorResponse
// @Router /admin/databases [post]
func (h *DatabaseHandler) CreateEntry(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.DatabaseEntryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	entry, err := h.databaseService.Create(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// UpdateEntry applies a partial dataset update
// @Summary Update database entry
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param entry body services.DatabaseEntryUpdateRequest true "Fields to update"
// @Success 200 {object} models.DatabaseEntry
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/databases/{id} [put]
func (h *DatabaseHandler) UpdateEntry(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.DatabaseEntryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	entry, err := h.databaseService.Update(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes a dataset
// @Summary Delete database entry
// @Tags admin
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/databases/{id} [delete]
func (h *DatabaseHandler) DeleteEntry(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.databaseService.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Database entry deleted"})
}

// ImportRecords appends rows from an uploaded xlsx file to a dataset
// @Summary Import spreadsheet records
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Entry ID"
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} models.DatabaseEntry
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/databases/{id}/import [post]
func (h *DatabaseHandler) ImportRecords(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File exceeds maximum import size",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unable to read uploaded file",
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unable to read uploaded file",
		})
		return
	}

	h.LogRequest(c, "importing spreadsheet", "entry_id", c.Param("id"), "size", fileHeader.Size)

	entry, err := h.databaseService.ImportRecords(c.Request.Context(), user, c.Param("id"), data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
