package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

// ErrorResponse is the uniform error payload returned by every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse wraps non-entity success payloads.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// BaseHandler provides shared helpers for all HTTP handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs handler activity with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// handleServiceError maps the service error taxonomy to HTTP statuses.
// Validation failures include field detail; everything else stays generic.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		resp := ErrorResponse{Message: "Validation failed"}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			resp.Details = ve
		} else {
			resp.Message = serviceMessage(err)
		}
		c.JSON(http.StatusBadRequest, resp)
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Message: serviceMessage(err)})
	case services.KindAuthorization:
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Insufficient permissions"})
	default:
		utils.FromContext(c.Request.Context(), h.logger).Error("internal error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

func serviceMessage(err error) string {
	var se *services.ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// currentUser returns the authenticated user set by the auth middleware; it
// writes the 401 response itself when absent.
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil, false
	}
	return user, true
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func queryBoolPtr(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
