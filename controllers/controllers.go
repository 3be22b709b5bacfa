package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// RegisterValidators adds the custom binding rules used by the request types
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// respondError writes the status matching the failure kind of err.
// Unexpected errors are logged and hidden from the client.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusFor(svcErr.Kind), gin.H{"error": svcErr.Message})
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// idParam parses a positive integer path parameter, answering 400 otherwise
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// intQuery reads an integer query parameter with a default
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

// pageQuery reads page and page_size
func pageQuery(c *gin.Context, log logrus.FieldLogger, defaultSize int) (services.Page, bool) {
	number, ok := intQuery(c, "page", 1)
	if !ok {
		return services.Page{}, false
	}
	size, ok := intQuery(c, "page_size", defaultSize)
	if !ok {
		return services.Page{}, false
	}
	page, err := services.NewPage(number, size)
	if err != nil {
		respondError(c, log, err)
		return services.Page{}, false
	}
	return page, true
}
