package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/allblack/allblack-panel/caching"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	cfg := DefaultRateLimitConfig()
	cfg.Requests = 2
	cfg.Window = time.Minute
	r.POST("/login", RateLimitMiddleware(caching.NewCache(time.Minute), cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients keep their own budget")
}

func TestRoleRequired(t *testing.T) {
	tests := []struct {
		name     string
		identity *entity.Identity
		want     int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &entity.Identity{Id: 3, Username: "07", Role: model.RoleCustomer}, http.StatusForbidden},
		{"employee", &entity.Identity{Id: 2, Username: "ana", Role: model.RoleEmployee}, http.StatusOK},
		{"admin", &entity.Identity{Id: 1, Username: "admin", Role: model.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(sessions.Sessions(session.Name, cookie.NewStore([]byte("secret"))))
			r.Use(func(c *gin.Context) {
				if tt.identity != nil {
					session.SetRequestUser(c, *tt.identity)
				}
			})
			r.GET("/queue", RoleRequired(model.RoleEmployee, model.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queue", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
