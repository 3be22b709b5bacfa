package controllers

import (
	"net/http"

	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	users       *services.UserService
	profile     *services.ProfileService
	connections *services.ConnectionService
	posts       *services.PostService
	log         logrus.FieldLogger
}

func NewUserController(users *services.UserService, profile *services.ProfileService, connections *services.ConnectionService, posts *services.PostService, log logrus.FieldLogger) *UserController {
	return &UserController{users: users, profile: profile, connections: connections, posts: posts, log: log}
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserSummary
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/users/me [get]
func (uc *UserController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c).Summary())
}

// Suggested godoc
// @Summary Suggested users
// @Description Users with no connection request to or from the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserSummary
// @Router /api/users/suggested [get]
func (uc *UserController) Suggested(c *gin.Context) {
	users, err := uc.users.Suggested(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetBio godoc
// @Summary Get profile bio
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserInfo
// @Failure 404 {object} map[string]string "User bio not found"
// @Router /api/users/me/bio [get]
func (uc *UserController) GetBio(c *gin.Context) {
	info, err := uc.profile.GetBio(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// UpdateBio godoc
// @Summary Update profile bio
// @Description Partial update. Set remove_profile_picture to drop the current picture.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bio body services.BioUpdate true "Bio fields"
// @Success 200 {object} models.UserInfo
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /api/users/me/update-bio [put]
func (uc *UserController) UpdateBio(c *gin.Context) {
	var input services.BioUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := uc.profile.UpdateBio(c.Request.Context(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// AddProfilePicture godoc
// @Summary Upload profile picture
// @Description JPEG, PNG or WEBP up to 5MB
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param profile_picture formData file true "Picture"
// @Success 200 {object} models.UserInfo
// @Failure 400 {object} map[string]string "Invalid file"
// @Router /api/users/me/add-profile-picture [put]
func (uc *UserController) AddProfilePicture(c *gin.Context) {
	header, err := c.FormFile("profile_picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	info, err := uc.profile.UpdatePicture(c.Request.Context(), middleware.CurrentUser(c).ID, services.Picture{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Requests godoc
// @Summary Incoming connection requests
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.IncomingRequest
// @Router /api/users/me/requests [get]
func (uc *UserController) Requests(c *gin.Context) {
	requests, err := uc.connections.IncomingRequests(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// LikedPosts godoc
// @Summary Posts liked by the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /api/users/me/liked-posts [get]
func (uc *UserController) LikedPosts(c *gin.Context) {
	posts, err := uc.posts.LikedPosts(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Status godoc
// @Summary Verification status of a user
// @Tags users
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} services.StatusResult
// @Failure 404 {object} map[string]string "User not found or not verified"
// @Router /api/users/status/{user_id} [get]
func (uc *UserController) Status(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	status, err := uc.users.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
