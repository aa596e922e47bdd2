package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DPU-COL/learner-assist-service/internal/config"
	"github.com/DPU-COL/learner-assist-service/internal/rbac"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/services"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
)

type HandlerManager struct {
	chatHandler     *ChatHandler
	userHandler     *UserHandler
	roleHandler     *RoleHandler
	corpusHandler   *CorpusHandler
	databaseHandler *DatabaseHandler
	ruleHandler     *RuleHandler
	settingsHandler *SettingsHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		chatHandler:     NewChatHandler(serviceManager.Chat(), logger),
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		roleHandler:     NewRoleHandler(serviceManager.Role(), logger),
		corpusHandler:   NewCorpusHandler(serviceManager.Corpus(), logger),
		databaseHandler: NewDatabaseHandler(serviceManager.Database(), logger),
		ruleHandler:     NewRuleHandler(serviceManager.Rule(), logger),
		settingsHandler: NewSettingsHandler(serviceManager.Settings(), logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// Branding is readable before login
	router.GET("/api/v1/settings", hm.settingsHandler.GetSettings)

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// User sync runs right after authentication, before any role gate
		v1.POST("/users/sync", hm.userHandler.SyncUser)

		// Conversation routes - any active authenticated user; ownership is
		// enforced inside the service
		chats := v1.Group("/chats")
		chats.Use(hm.authMiddleware.RequireActive())
		{
			chats.POST("", hm.chatHandler.CreateChat)
			chats.GET("", hm.chatHandler.ListChats)
			chats.GET("/:id", hm.chatHandler.GetChat)
			chats.POST("/:id/messages", hm.chatHandler.PostMessage)
			chats.DELETE("/:id", hm.chatHandler.DeleteChat)
		}

		// Admin routes - each group gated on its permission flag
		admin := v1.Group("/admin")
		{
			users := admin.Group("/users")
			users.Use(hm.authMiddleware.RequirePermission(rbac.PermManageUsers))
			{
				users.GET("", hm.userHandler.ListUsers)
				users.GET("/:id", hm.userHandler.GetUser)
				users.PUT("/:id", hm.userHandler.UpdateUser)
				users.DELETE("/:id", hm.userHandler.DeleteUser)
				users.POST("/bulk", hm.userHandler.BulkUserAction)
			}

			roles := admin.Group("/roles")
			roles.Use(hm.authMiddleware.RequirePermission(rbac.PermManageRoles))
			{
				roles.GET("", hm.roleHandler.ListRoles)
				roles.POST("", hm.roleHandler.CreateRole)
				roles.PUT("/:id", hm.roleHandler.UpdateRole)
				roles.DELETE("/:id", hm.roleHandler.DeleteRole)
			}

			corpus := admin.Group("/corpus")
			corpus.Use(hm.authMiddleware.RequirePermission(rbac.PermManageCorpus))
			{
				corpus.GET("", hm.corpusHandler.ListCorpus)
				corpus.GET("/:id", hm.corpusHandler.GetCorpus)
				corpus.POST("", hm.corpusHandler.CreateCorpus)
				corpus.PUT("/:id", hm.corpusHandler.UpdateCorpus)
				corpus.DELETE("/:id", hm.corpusHandler.DeleteCorpus)
			}

			databases := admin.Group("/databases")
			databases.Use(hm.authMiddleware.RequirePermission(rbac.PermManageDatabase))
			{
				databases.GET("", hm.databaseHandler.ListEntries)
				databases.GET("/:id", hm.databaseHandler.GetEntry)
				databases.POST("", hm.databaseHandler.CreateEntry)
				databases.PUT("/:id", hm.databaseHandler.UpdateEntry)
				databases.DELETE("/:id", hm.databaseHandler.DeleteEntry)
				databases.POST("/:id/import", hm.databaseHandler.ImportRecords)
			}

			rules := admin.Group("/rules")
			rules.Use(hm.authMiddleware.RequirePermission(rbac.PermManageAIRules))
			{
				rules.GET("", hm.ruleHandler.ListRules)
				rules.POST("", hm.ruleHandler.CreateRule)
				rules.PUT("/:id", hm.ruleHandler.UpdateRule)
				rules.DELETE("/:id", hm.ruleHandler.DeleteRule)
			}

			chatAdmin := admin.Group("/chats")
			{
				chatAdmin.GET("", hm.authMiddleware.RequirePermission(rbac.PermViewAllChats), hm.chatHandler.ListAllChats)
				chatAdmin.DELETE("/:id", hm.authMiddleware.RequirePermission(rbac.PermDeleteChats), hm.chatHandler.DeleteAnyChat)
			}

			admin.PUT("/settings", hm.settingsHandler.UpdateSettings)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "learner-assist-service",
	})
}
