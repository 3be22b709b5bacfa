package server

import (
	"net/http"

	"github.com/CUknot/social_backend/controllers"
	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/metrics"
	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth          *middleware.Authenticator
	AuthCtl       *controllers.AuthController
	Users         *controllers.UserController
	Admin         *controllers.AdminController
	Connections   *controllers.ConnectionController
	Chat          *controllers.ChatController
	Groups        *controllers.GroupController
	Posts         *controllers.PostController
	ChatSockets   *websocket.ChatHandler
	Notifications *websocket.NotificationHandler
}

// NewRouter builds the HTTP engine with every API route mounted
func NewRouter(h Handlers, m *metrics.Metrics, gatherer prometheus.Gatherer, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(log), m.Middleware(), cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Sockets authenticate with the token query parameter
	router.GET("/api/chat/ws/chat/:friend_id", h.ChatSockets.DirectChat)
	router.GET("/api/chat/ws/groups/:group_id", h.ChatSockets.GroupChat)
	router.GET("/api/connections/ws/notifications", h.Notifications.Stream)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthCtl.Register)
		auth.POST("/login", h.AuthCtl.Login)
	}

	api.GET("/users/status/:user_id", h.Users.Status)

	protected := api.Group("")
	protected.Use(h.Auth.JWTAuth())

	users := protected.Group("/users")
	{
		users.GET("/me", h.Users.Me)
		users.GET("/suggested", h.Users.Suggested)
		users.GET("/me/bio", h.Users.GetBio)
		users.PUT("/me/update-bio", h.Users.UpdateBio)
		users.PUT("/me/add-profile-picture", h.Users.AddProfilePicture)
		users.GET("/me/requests", h.Users.Requests)
		users.GET("/me/liked-posts", h.Users.LikedPosts)
	}

	posts := protected.Group("/posts")
	{
		posts.POST("", h.Posts.Create)
		posts.GET("", h.Posts.List)
		posts.GET("/me", h.Posts.Mine)
		posts.GET("/:post_id", h.Posts.Get)
		posts.DELETE("/:post_id", h.Posts.Delete)
	}
	protected.POST("/likes/like/:post_id", h.Posts.ToggleLike)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/users", h.Admin.ListUsers)
		admin.POST("/verify/:user_id", h.Admin.Verify)
	}

	connections := protected.Group("/connections")
	{
		connections.POST("/request/:receiver_id", h.Connections.SendRequest)
		connections.PUT("/accept/:request_id", h.Connections.Accept)
		connections.PUT("/reject/:request_id", h.Connections.Reject)
		connections.GET("/notifications", h.Connections.Notifications)
		connections.PUT("/notifications/:notification_id/read", h.Connections.MarkNotificationRead)
		connections.GET("/friends", h.Connections.Friends)
	}

	chat := protected.Group("/chat")
	{
		chat.GET("/history/:friend_id", h.Chat.History)
		chat.GET("/all", h.Chat.All)
		chat.PUT("/messages/:message_id/read", h.Chat.MarkRead)
	}

	groups := protected.Group("/groups")
	{
		groups.POST("/create", h.Groups.Create)
		groups.POST("/:group_id/members", h.Groups.AddMembers)
		groups.GET("/:group_id/messages", h.Groups.Messages)
		groups.GET("/my-groups", h.Groups.MyGroups)
	}

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
