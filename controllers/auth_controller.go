package controllers

import (
	"net/http"

	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	users *services.UserService
	log   logrus.FieldLogger
}

func NewAuthController(users *services.UserService, log logrus.FieldLogger) *AuthController {
	return &AuthController{users: users, log: log}
}

type RegisterInput struct {
	FirstName string `json:"first_name" binding:"required,notblank,max=255" example:"Jane"`
	LastName  string `json:"last_name" binding:"required,notblank,max=255" example:"Doe"`
	Email     string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password  string `json:"password" binding:"required,min=6" example:"secret123"`
}

// LoginInput accepts a JSON body or the form fields "username" and "password"
type LoginInput struct {
	Email    string `json:"email" form:"username" binding:"required" example:"jane@example.com"`
	Password string `json:"password" form:"password" binding:"required" example:"secret123"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates an unverified account. An admin must verify it before the user can log in.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "User Registration"
// @Success 201 {object} map[string]string "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.Register(c.Request.Context(), services.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":     "User registered successfully",
		"user_id": user.ID,
	})
}

// Login godoc
// @Summary Log in
// @Description Returns a bearer token. Accepts JSON {email, password} or form fields username/password.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param credentials body LoginInput true "User Login"
// @Success 200 {object} services.LoginResult
// @Failure 401 {object} map[string]string "Incorrect username or password"
// @Failure 403 {object} map[string]string "Account not verified"
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ac.users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
