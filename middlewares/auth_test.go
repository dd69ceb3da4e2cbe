package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmdatafocus/vouchers_backend/utils"
)

func newGuardedRouter(t *testing.T) (*gin.Engine, *primitive.ObjectID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen primitive.ObjectID
	r := gin.New()
	r.GET("/protected", Auth(), func(c *gin.Context) {
		id, ok := AuthUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		seen = id
		c.Status(http.StatusNoContent)
	})
	return r, &seen
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newGuardedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	r, _ := newGuardedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r, seen := newGuardedRouter(t)
	userID := primitive.NewObjectID()

	token, err := utils.JwtGenerate(userID.Hex())
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body %s)", w.Code, w.Body.String())
	}
	if *seen != userID {
		t.Errorf("handler saw user %s, want %s", seen.Hex(), userID.Hex())
	}
}
