package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("ops", RoleViewer, "attendterm", "secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := Parse(tok.Value, "secret", "attendterm")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "ops" || claims.Role != RoleViewer || claims.ID == "" {
		t.Fatalf("claims %+v", claims)
	}

	if _, err := Parse(tok.Value, "other", "attendterm"); err == nil {
		t.Fatal("wrong key accepted")
	}
	if _, err := Parse(tok.Value, "secret", "someone-else"); err == nil {
		t.Fatal("wrong issuer accepted")
	}
}

func TestExpiredToken(t *testing.T) {
	tok, err := Issue("ops", RoleViewer, "attendterm", "secret", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tok.Value, "secret", "attendterm"); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestIssueWithoutKey(t *testing.T) {
	if _, err := Issue("ops", RoleViewer, "attendterm", "", time.Hour); err == nil {
		t.Fatal("expected error without signing key")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v", BearerAuth("secret", "attendterm"), RequireRole(RoleOperator), func(c *gin.Context) {
		claims, _ := FromContext(c)
		c.String(http.StatusOK, claims.Subject)
	})

	operator, _ := Issue("alice", RoleOperator, "attendterm", "secret", time.Hour)
	viewer, _ := Issue("bob", RoleViewer, "attendterm", "secret", time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer.Value, http.StatusForbidden},
		{"ok", "bearer " + operator.Value, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s: status %d want %d", tc.name, w.Code, tc.want)
		}
	}
}
