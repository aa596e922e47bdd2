package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
)

type RoleHandler struct {
	BaseHandler
	roleService services.RoleService
}

func NewRoleHandler(roleService services.RoleService, logger utils.Logger) *RoleHandler {
	return &RoleHandler{
		BaseHandler: NewBaseHandler(logger),
		roleService: roleService,
	}
}

// ListRoles lists all roles, system and custom
// @Summary List roles
// @Tags admin
// @Produce json
// @Success 200 {array} models.Role
// @Failure 403 {object} ErrorResponse
// @Router /admin/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	roles, err := h.roleService.List(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, roles)
}

// CreateRole creates a custom role
// @Summary Create role
// @Tags admin
// @Accept json
// @Produce json
// @Param role body services.RoleCreateRequest true "Role data"
// @Success 201 {object} models.Role
// @Failure 400 {object} ErrorResponse
// @Router /admin/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, role)
}

// UpdateRole updates a role; system roles accept permission changes only
// @Summary Update role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param role body services.RoleUpdateRequest true "Fields to update"
// @Success 200 {object} models.Role
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, role)
}

// DeleteRole removes a custom role; system roles are protected
// @Summary Delete role
// @Tags admin
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Role deleted"})
}
