package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"calorie_tracker/internal/store" // Store error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Every response carries "success"; failures use one uniform envelope whose
// numeric "error" code mirrors the HTTP status on the transport line.

// OK writes a success response, merging payload into the envelope
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail writes the uniform failure envelope
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,  // Failure envelope
		"error":   status, // Numeric code mirrors the status
		"message": msg,    // Human-readable reason
	})
}

// FailErr translates a store error into the failure envelope. Unknown errors
// become a generic 500 so no internal detail leaks to the client.
func FailErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrInvalidCredentials):
		Fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrForbidden):
		Fail(c, http.StatusForbidden, "Operation not permitted")
	case errors.Is(err, store.ErrNotFound):
		Fail(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrDuplicateUsername):
		Fail(c, http.StatusUnprocessableEntity, "Username already exists")
	case errors.Is(err, store.ErrUnresolvedFood):
		Fail(c, http.StatusUnprocessableEntity, "Food item could not be resolved")
	default:
		logrus.WithField("error", err.Error()).Error("Unexpected failure")
		Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
