package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock resolver ──

type mockResolver struct {
	roles map[string]string // "user:term" → role
	calls []string
}

func (m *mockResolver) Resolve(_ context.Context, userID, termID string) (*model.TermMembership, error) {
	m.calls = append(m.calls, termID)
	role, ok := m.roles[userID+":"+termID]
	if !ok {
		return nil, service.ErrNotMember
	}
	return &model.TermMembership{UserID: userID, TermID: termID, Role: role}, nil
}

func newTermRouter(resolver MembershipResolver, userID string, allowed ...string) *gin.Engine {
	r := gin.New()
	withUser := func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
	echo := func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{"term_id": c.GetString(ContextTermID), "body": string(body)})
	}
	mw := TermMember(resolver, allowed...)
	r.GET("/terms/:termId/pnms", withUser, mw, echo)
	r.POST("/terms/:termId/pnms", withUser, mw, echo)
	r.GET("/scoped", withUser, mw, echo)
	r.POST("/scoped", withUser, mw, echo)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestTermMember_ExtractionOrder(t *testing.T) {
	resolver := &mockResolver{roles: map[string]string{
		"u1:path-term":  model.RoleMember,
		"u1:query-term": model.RoleMember,
		"u1:body-term":  model.RoleMember,
	}}
	r := newTermRouter(resolver, "u1")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   string
	}{
		{"path wins over query and body", "POST", "/terms/path-term/pnms?term=query-term", `{"termId":"body-term"}`, "path-term"},
		{"query wins over body", "POST", "/scoped?term=query-term", `{"termId":"body-term"}`, "query-term"},
		{"body as last resort", "POST", "/scoped", `{"termId":"body-term"}`, "body-term"},
		{"query on GET", "GET", "/scoped?term=query-term", "", "query-term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var got map[string]string
			json.Unmarshal(w.Body.Bytes(), &got)
			if got["term_id"] != tt.want {
				t.Errorf("term_id = %q, want %q", got["term_id"], tt.want)
			}
			if got["body"] != tt.body {
				t.Errorf("body must be restored for the handler, got %q", got["body"])
			}
		})
	}
}

func TestTermMember_Failures(t *testing.T) {
	resolver := &mockResolver{roles: map[string]string{"u1:t1": model.RoleMember}}

	tests := []struct {
		name       string
		userID     string
		target     string
		allowed    []string
		wantStatus int
		wantError  string
	}{
		{"no identity", "", "/terms/t1/pnms", nil, http.StatusUnauthorized, "unauthenticated"},
		{"no term", "u1", "/scoped", nil, http.StatusBadRequest, "term_required"},
		{"not a member", "u1", "/terms/t2/pnms", nil, http.StatusForbidden, "not_a_member"},
		{"role not allowed", "u1", "/terms/t1/pnms", []string{model.RoleAdmin, model.RoleAdder}, http.StatusForbidden, "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTermRouter(resolver, tt.userID, tt.allowed...)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := decodeError(t, w); resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestTermMember_AllowedRole(t *testing.T) {
	resolver := &mockResolver{roles: map[string]string{"u1:t1": model.RoleAdder}}
	r := newTermRouter(resolver, "u1", model.RoleAdmin, model.RoleAdder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/terms/t1/pnms", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Adder should pass, got %d", w.Code)
	}
}

func TestTermMember_GlobalRoleIgnored(t *testing.T) {
	resolver := &mockResolver{roles: map[string]string{}}
	r := gin.New()
	r.GET("/terms/:termId/pnms", func(c *gin.Context) {
		c.Set(ContextUserID, "root")
		c.Set(ContextRole, model.RoleAdmin)
		c.Next()
	}, TermMember(resolver), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/terms/t1/pnms", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("global Admin without membership must get 403, got %d", w.Code)
	}
}
