package server

import (
	"github.com/CUknot/social_backend/config"
	"github.com/CUknot/social_backend/controllers"
	"github.com/CUknot/social_backend/imagestore"
	"github.com/CUknot/social_backend/metrics"
	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/services"
	"github.com/CUknot/social_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the external resources the server is assembled from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Images   imagestore.Store
	Registry *prometheus.Registry
	Log      logrus.FieldLogger
}

// New wires services, controllers and socket handlers into a router
func New(d Deps) (*gin.Engine, error) {
	if err := controllers.RegisterValidators(); err != nil {
		return nil, err
	}

	m := metrics.New(d.Registry)

	users := services.NewUserService(d.DB, d.Log, d.Config.JWTSecret, d.Config.TokenTTL)
	connections := services.NewConnectionService(d.DB, d.Log)
	groups := services.NewGroupService(d.DB, d.Log)
	messages := services.NewMessageService(d.DB, d.Log, connections, groups)
	notifications := services.NewNotificationService(d.DB, d.Log)
	profile := services.NewProfileService(d.DB, d.Log, d.Images)
	posts := services.NewPostService(d.DB, d.Log)

	auth := middleware.NewAuthenticator(users, d.Config.JWTSecret)
	rooms := websocket.NewRegistry(d.Log, m)

	h := Handlers{
		Auth:          auth,
		AuthCtl:       controllers.NewAuthController(users, d.Log),
		Users:         controllers.NewUserController(users, profile, connections, posts, d.Log),
		Admin:         controllers.NewAdminController(users, d.Log),
		Connections:   controllers.NewConnectionController(connections, notifications, d.Log),
		Chat:          controllers.NewChatController(messages, d.Log),
		Groups:        controllers.NewGroupController(groups, messages, d.Log),
		Posts:         controllers.NewPostController(posts, d.Log),
		ChatSockets:   websocket.NewChatHandler(rooms, auth, connections, groups, messages, d.Log),
		Notifications: websocket.NewNotificationHandler(auth, notifications, d.Config.NotificationInterval, m, d.Log),
	}

	return NewRouter(h, m, d.Registry, d.Log), nil
}
