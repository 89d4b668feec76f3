package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// Context keys set by TermMember.
const (
	ContextTermID     = "term_id"
	ContextMembership = "membership"
)

// MembershipResolver looks up the caller's role in a term. service.MembershipService satisfies it.
type MembershipResolver interface {
	Resolve(ctx context.Context, userID, termID string) (*model.TermMembership, error)
}

// TermIDExtractor pulls a term id out of the request; "" means not present.
type TermIDExtractor func(c *gin.Context) string

// DefaultTermIDExtractors is the lookup order: path param, query, JSON body.
var DefaultTermIDExtractors = []TermIDExtractor{
	TermIDFromParam("termId"),
	TermIDFromQuery("term"),
	TermIDFromJSONBody("termId"),
}

// TermIDFromParam reads a path parameter.
func TermIDFromParam(name string) TermIDExtractor {
	return func(c *gin.Context) string { return strings.TrimSpace(c.Param(name)) }
}

// TermIDFromQuery reads a query parameter.
func TermIDFromQuery(name string) TermIDExtractor {
	return func(c *gin.Context) string { return strings.TrimSpace(c.Query(name)) }
}

// TermIDFromJSONBody reads a top-level string field of a JSON body and puts
// the body back so handlers can bind it again.
func TermIDFromJSONBody(field string) TermIDExtractor {
	return func(c *gin.Context) string {
		if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
			return ""
		}
		raw, err := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil || len(raw) == 0 {
			return ""
		}

		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			return ""
		}
		if s, ok := body[field].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}
}

// TermMember resolves the target term with DefaultTermIDExtractors and
// requires the caller to be a member with one of allowed (any role when empty).
func TermMember(resolver MembershipResolver, allowed ...string) gin.HandlerFunc {
	return TermMemberWith(resolver, DefaultTermIDExtractors, allowed...)
}

// TermMemberWith is TermMember with a custom extractor order. The first non-empty value wins.
func TermMemberWith(resolver MembershipResolver, extractors []TermIDExtractor, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			response.Unauthorized(c, 10002, "unauthenticated", "authentication required")
			c.Abort()
			return
		}

		var termID string
		for _, extract := range extractors {
			if termID = extract(c); termID != "" {
				break
			}
		}
		if termID == "" {
			response.BadRequest(c, 10001, "term_required", "term id is required")
			c.Abort()
			return
		}

		m, err := resolver.Resolve(c.Request.Context(), userID, termID)
		if err != nil {
			if errors.Is(err, service.ErrNotMember) {
				response.Forbidden(c, 10003, "not_a_member", "not a member of this term")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		if !m.HasRole(allowed...) {
			response.Forbidden(c, 10003, "forbidden", "role not allowed for this action")
			c.Abort()
			return
		}

		c.Set(ContextTermID, termID)
		c.Set(ContextMembership, m)
		c.Next()
	}
}
