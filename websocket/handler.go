package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/CUknot/social_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Authenticator resolves the token passed in the "token" query parameter
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// accept upgrades the request and authenticates it. On failure the socket is
// closed with a policy violation and nil is returned.
func accept(c *gin.Context, auth Authenticator, log logrus.FieldLogger) (*websocket.Conn, *models.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade connection")
		return nil, nil
	}

	user, err := auth.Authenticate(c.Request.Context(), c.Query("token"))
	if err != nil {
		log.WithError(err).Info("Rejected websocket connection")
		refuse(conn, websocket.ClosePolicyViolation, "Invalid token")
		conn.Close()
		return nil, nil
	}
	return conn, user
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
