package controllers

import (
	"net/http"

	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminController struct {
	users *services.UserService
	log   logrus.FieldLogger
}

func NewAdminController(users *services.UserService, log logrus.FieldLogger) *AdminController {
	return &AdminController{users: users, log: log}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Admin access required"
// @Router /api/admin/dashboard [get]
func (ac *AdminController) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "Welcome to the admin dashboard"})
}

// ListUsers godoc
// @Summary List all non-admin users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserSummary
// @Failure 404 {object} map[string]string "No users found"
// @Router /api/admin/users [get]
func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Verify godoc
// @Summary Verify a user account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]string "User verified successfully"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/admin/verify/{user_id} [post]
func (ac *AdminController) Verify(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	if err := ac.users.Verify(c.Request.Context(), userID); err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User verified successfully"})
}
