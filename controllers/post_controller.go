package controllers

import (
	"net/http"

	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PostController struct {
	posts *services.PostService
	log   logrus.FieldLogger
}

func NewPostController(posts *services.PostService, log logrus.FieldLogger) *PostController {
	return &PostController{posts: posts, log: log}
}

type CreatePostInput struct {
	Content string `json:"content" binding:"required,notblank" example:"Hello world"`
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body CreatePostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /api/posts [post]
func (pc *PostController) Create(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := pc.posts.Create(c.Request.Context(), middleware.CurrentUser(c).ID, input.Content)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Mine godoc
// @Summary Posts of the current user
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /api/posts/me [get]
func (pc *PostController) Mine(c *gin.Context) {
	posts, err := pc.posts.Mine(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// List godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Skip" default(0)
// @Param limit query int false "Limit" default(10)
// @Success 200 {array} models.Post
// @Failure 400 {object} map[string]string "Invalid paging"
// @Router /api/posts [get]
func (pc *PostController) List(c *gin.Context) {
	skip, ok := intQuery(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", services.DefaultPostLimit)
	if !ok {
		return
	}

	posts, err := pc.posts.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} map[string]string "Post not found"
// @Router /api/posts/{post_id} [get]
func (pc *PostController) Get(c *gin.Context) {
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	post, err := pc.posts.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Post ID"
// @Success 200 {object} map[string]interface{} "Post deleted successfully"
// @Failure 403 {object} map[string]string "Not authorized to delete this post"
// @Failure 404 {object} map[string]string "Post not found"
// @Router /api/posts/{post_id} [delete]
func (pc *PostController) Delete(c *gin.Context) {
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	post, err := pc.posts.Delete(c.Request.Context(), postID, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post deleted successfully", "post": post})
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "Post ID"
// @Success 200 {object} services.LikeResult
// @Failure 404 {object} map[string]string "Post not found"
// @Failure 409 {object} map[string]string "Like already recorded"
// @Router /api/likes/like/{post_id} [post]
func (pc *PostController) ToggleLike(c *gin.Context) {
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	res, err := pc.posts.ToggleLike(c.Request.Context(), postID, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
