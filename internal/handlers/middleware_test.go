package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cocodry/internal/models"
	"cocodry/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/secure", h.operatorMiddleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "operator": operatorFrom(c)})
	})
	return r
}

func TestOperatorMiddleware_Errors(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		parseErr error
		wantMsg  string
	}{
		{name: "missing header", header: "", wantMsg: "missing Authorization header"},
		{name: "invalid scheme", header: "Token abc", wantMsg: "invalid Authorization header format"},
		{name: "bearer without token", header: "Bearer", wantMsg: "invalid Authorization header format"},
		{name: "bearer with empty token", header: "Bearer ", wantMsg: "invalid Authorization header format"},
		{name: "expired token", header: "Bearer expired", parseErr: errors.New("expired"), wantMsg: "invalid or expired token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &service.Service{Authorization: &mockAuth{op: testOp, parseErr: tc.parseErr}}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401 (body=%s)", w.Code, w.Body.String())
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.wantMsg {
				t.Fatalf("error message: got %q, want %q", out.Error, tc.wantMsg)
			}
		})
	}
}

func TestOperatorMiddleware_SetsOperator(t *testing.T) {
	auth := &mockAuth{op: testOp}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d; body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		OK       bool            `json:"ok"`
		Operator models.Operator `json:"operator"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK || resp.Operator != testOp {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if auth.lastParseToken != "good-token" {
		t.Fatalf("ParseToken got %q, want %q", auth.lastParseToken, "good-token")
	}
}

func TestOperatorMiddleware_RealTokens(t *testing.T) {
	ids := service.NewIdentityService("secret")
	token, err := ids.IssueToken(testOp, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: ids})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("signed token rejected: %d %s", w.Code, w.Body.String())
	}

	other, _ := service.NewIdentityService("other").IssueToken(testOp, time.Hour)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("token signed with another key accepted")
	}
}
