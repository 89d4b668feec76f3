package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/api/middleware"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// MustGetUserID returns the authenticated user id, or writes a 401 and false.
// Callers return immediately on false.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "unauthenticated", "authentication required")
		return "", false
	}
	return s, true
}

// MustGetTermID returns the term id resolved by the TermMember middleware.
func MustGetTermID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextTermID)
	if s == "" {
		response.BadRequest(c, 10001, "term_required", "term id is required")
		return "", false
	}
	return s, true
}

// tokenMeta returns the jti and expiry of the current access token.
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenJTI)
	exp := c.GetTime(middleware.ContextTokenExp)
	return jti, exp
}
