package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
)

type ChatHandler struct {
	BaseHandler
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService, logger utils.Logger) *ChatHandler {
	return &ChatHandler{
		BaseHandler: NewBaseHandler(logger),
		chatService: chatService,
	}
}

// CreateChat creates an empty conversation for the caller
// @Summary Create chat
// @Tags chats
// @Produce json
// @Success 201 {object} models.Chat
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chats [post]
func (h *ChatHandler) CreateChat(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	chat, err := h.chatService.Create(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chat)
}

// ListChats lists the caller's conversations, metadata only
// @Summary List own chats
// @Tags chats
// @Produce json
// @Success 200 {object} services.ChatListResponse
// @Failure 401 {object} ErrorResponse
// @Router /chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.chatService.List(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetChat returns one conversation with its full transcript
// @Summary Get chat
// @Tags chats
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {object} models.Chat
// @Failure 404 {object} ErrorResponse
// @Router /chats/{id} [get]
func (h *ChatHandler) GetChat(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	chat, err := h.chatService.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// PostMessage runs one conversation turn
// @Summary Post message
// @Tags chats
// @Accept json
// @Produce json
// @Param id path string true "Chat ID"
// @Param message body services.PostMessageRequest true "User message"
// @Success 200 {object} models.Chat
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chats/{id}/messages [post]
func (h *ChatHandler) PostMessage(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "posting chat message", "chat_id", c.Param("id"))

	chat, err := h.chatService.PostMessage(c.Request.Context(), c.Param("id"), user, req.Message)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// DeleteChat deletes one of the caller's conversations
// @Summary Delete chat
// @Tags chats
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /chats/{id} [delete]
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.chatService.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Chat deleted"})
}

// ListAllChats is the admin view across all owners
// @Summary List all chats
// @Tags admin
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.ChatListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/chats [get]
func (h *ChatHandler) ListAllChats(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.ChatFilters{
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	}

	resp, err := h.chatService.ListAll(c.Request.Context(), user, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteAnyChat is the admin delete of any conversation
// @Summary Delete any chat
// @Tags admin
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/chats/{id} [delete]
func (h *ChatHandler) DeleteAnyChat(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteAny(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Chat deleted"})
}
