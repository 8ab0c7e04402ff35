// Package session keeps the logged-in identity in the gin cookie session.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/allblack/allblack-panel/web/entity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Name is the session cookie name.
const Name = "allblack_user"

const (
	loginUser   = "LOGIN_USER"
	identityKey = "identity"
)

func init() {
	gob.Register(entity.Identity{})
}

func SetLoginUser(c *gin.Context, identity entity.Identity) error {
	s := sessions.Default(c)
	s.Set(loginUser, identity)
	return s.Save()
}

// SetMaxAge sets the cookie options the next Save writes.
func SetMaxAge(c *gin.Context, maxAge int) {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLoginUser returns the identity of the request. A bearer token parsed by
// the auth middleware takes precedence over the cookie session.
func GetLoginUser(c *gin.Context) *entity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(entity.Identity); ok {
			return &identity
		}
	}
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if identity, ok := obj.(entity.Identity); ok {
			return &identity
		}
	}
	return nil
}

// SetRequestUser attaches identity to the current request only.
func SetRequestUser(c *gin.Context, identity entity.Identity) {
	c.Set(identityKey, identity)
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
