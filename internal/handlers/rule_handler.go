package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
)

type RuleHandler struct {
	BaseHandler
	ruleService services.RuleService
}

func NewRuleHandler(ruleService services.RuleService, logger utils.Logger) *RuleHandler {
	return &RuleHandler{
		BaseHandler: NewBaseHandler(logger),
		ruleService: ruleService,
	}
}

// ListRules lists behavioral rules
// @Summary List AI rules
// @Tags admin
// @Produce json
// @Param category query string false "Category filter"
// @Param priority query string false "Priority filter"
// @Param is_active query bool false "Active filter"
// @Success 200 {object} services.AIRuleListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.AIRuleFilters{
		IsActive: queryBoolPtr(c, "is_active"),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	}
	if cat := c.Query("category"); cat != "" {
		rc := models.RuleCategory(cat)
		filters.Category = &rc
	}
	if pr := c.Query("priority"); pr != "" {
		rp := models.RulePriority(pr)
		filters.Priority = &rp
	}

	resp, err := h.ruleService.List(c.Request.Context(), user, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateRule creates a behavioral rule
// @Summary Create AI rule
// @Tags admin
// @Accept json
// @Produce json
// @Param rule body services.AIRuleCreateRequest true "Rule data"
// @Success 201 {object} models.AIRule
// @Failure 400 {object} ErrorResponse
// @Router /admin/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.AIRuleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// UpdateRule applies a partial rule update
// @Summary Update AI rule
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body services.AIRuleUpdateRequest true "Fields to update"
// @Success 200 {object} models.AIRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.AIRuleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes a behavioral rule
// @Summary Delete AI rule
// @Tags admin
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Rule deleted"})
}
